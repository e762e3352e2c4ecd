package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stackslab/ide/internal/app"
	"github.com/stackslab/ide/internal/config"
	"github.com/stackslab/ide/internal/mcp"
	"github.com/stackslab/ide/internal/realtime"
	"github.com/stackslab/ide/internal/transport"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "stackslab-ide: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level := new(slog.LevelVar)
	level.Set(config.ParseLevel(cfg.Log.Level))
	logger, closeLog := newLogger(cfg, level)
	defer closeLog()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.DB.Driver, err)
	}
	defer a.Close()

	if cfg.Path != "" {
		go watchLevel(ctx, cfg.Path, level, logger)
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Stores:        a.Registry,
		Resolver:      a.Keys,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		DefaultTenant: cfg.Auth.DefaultTenant,
		Version:       version,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		logger.Info("serving MCP on stdio", "tenant", cfg.Auth.DefaultTenant)
		// Returns when stdin closes or ctx is canceled.
		err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	hub := realtime.NewHub(logger, nil)
	defer hub.Close()
	a.Registry.OnOpen(hub.Attach)

	auth := transport.DefaultTenantMiddleware(cfg.Auth.DefaultTenant)
	if cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(a.Keys)
	}
	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: transport.NewServer(transport.Options{
			RPC:    mcp.NewHandler(a.Registry, logger),
			Auth:   auth,
			MCP:    newMCPHandler(mcpServer),
			Stores: a.Registry,
			Stream: hub,
			Logger: logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serveHTTP(ctx, srv, logger, cfg.Auth.Enabled)
}

// newLogger writes to stdout, or stderr in stdio mode where stdout carries
// JSON-RPC. A configured log file wins over both.
func newLogger(cfg config.Config, level *slog.LevelVar) (*slog.Logger, func()) {
	w := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		w = os.Stderr
	}
	closeFn := func() {}
	if cfg.Log.Path != "" {
		fw, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file %s: %v\n", cfg.Log.Path, err)
		} else {
			w = fw
			closeFn = func() { fw.file.Close() }
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}

func watchLevel(ctx context.Context, path string, level *slog.LevelVar, logger *slog.Logger) {
	err := config.Watch(ctx, path, logger, func(next config.Config) {
		level.Set(config.ParseLevel(next.Log.Level))
		logger.Info("log level updated", "level", next.Log.Level)
	})
	if err != nil {
		logger.Warn("config watch disabled", "path", path, "error", err)
	}
}

func newMCPHandler(mcpServer *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)
}

func serveHTTP(ctx context.Context, srv *http.Server, logger *slog.Logger, authEnabled bool) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "auth", authEnabled)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a log file and keeps only its newest
// keepLogSizeBytes once it grows past maxLogSizeBytes.
type logFileWriter struct {
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, error) {
	if err := app.EnsureParentDir(path); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &logFileWriter{file: file}
	if err := w.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.truncateIfNeeded()
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	n, err := w.file.ReadAt(buf, size-keepLogSizeBytes)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
