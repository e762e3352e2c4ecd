// Package app opens the storage backend and builds the workspace registry
// shared by the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stackslab/ide/internal/artifact"
	"github.com/stackslab/ide/internal/config"
	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/openrouter"
	"github.com/stackslab/ide/internal/postgres"
	"github.com/stackslab/ide/internal/repository"
	"github.com/stackslab/ide/internal/sqlite"
	"github.com/stackslab/ide/internal/transport"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Registry *workspace.Registry
	Keys     *transport.KeyResolver
	Reports  *artifact.S3Store // nil when archiving is not configured

	db     *sql.DB
	logger *slog.Logger
}

type repos struct {
	state repository.StateRepository
	creds repository.CredentialRepository
	keys  repository.APIKeyRepository
}

// Open connects to the configured database, prepares its schema and wires
// the analyzer, compiler pauses and report archive into a registry.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, r, err := openDB(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	analyzer, err := openrouter.NewCachedAnalyzer(openrouter.New(openrouter.Options{
		BaseURL:       cfg.Analysis.BaseURL,
		PrimaryModel:  cfg.Analysis.PrimaryModel,
		FallbackModel: cfg.Analysis.FallbackModel,
		QuickModel:    cfg.Analysis.QuickModel,
		Referer:       cfg.Analysis.Referer,
		Title:         cfg.Analysis.Title,
		Timeout:       cfg.Analysis.Timeout,
	}, logger), cfg.Analysis.CacheSize, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("analysis cache: %w", err)
	}

	a := &App{
		Keys:   transport.NewKeyResolver(r.keys),
		db:     db,
		logger: logger,
	}
	deps := workspace.Deps{
		Repo:          r.state,
		Credentials:   r.creds,
		Analyzer:      analyzer,
		DefaultAPIKey: cfg.Analysis.APIKey,
		Pause:         workspace.SleepPause(cfg.Compiler.PauseScale),
	}

	ac := artifact.Config(cfg.Artifact)
	if ac.Enabled() {
		store, err := artifact.NewS3Store(ac)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.Reports = store
		deps.Reports = store
		logger.Info("report archive enabled", "endpoint", ac.Endpoint, "bucket", ac.Bucket)
	}

	a.Registry = workspace.NewRegistry(deps, logger)
	return a, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}

func openDB(ctx context.Context, cfg config.DBConfig) (*sql.DB, repos, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, repos{}, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, repos{}, fmt.Errorf("failed to prepare schema: %w", err)
		}
		return db.DB, repos{
			state: postgres.NewStateRepository(db),
			creds: postgres.NewCredentialRepository(db),
			keys:  postgres.NewAPIKeyRepository(db),
		}, nil
	case "sqlite", "":
		if err := EnsureParentDir(cfg.Path); err != nil {
			return nil, repos{}, fmt.Errorf("failed to prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, repos{}, err
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, repos{}, fmt.Errorf("failed to run migrations: %w", err)
		}
		return db.DB, repos{
			state: sqlite.NewStateRepository(db),
			creds: sqlite.NewCredentialRepository(db),
			keys:  sqlite.NewAPIKeyRepository(db),
		}, nil
	default:
		return nil, repos{}, errors.Join(config.ErrInvalid, fmt.Errorf("unknown db driver %q", cfg.Driver))
	}
}

// EnsureParentDir creates the parent directory of a file path such as the
// SQLite database or the log file.
func EnsureParentDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
