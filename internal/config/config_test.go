package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	require.Equal(t, Default().Server, cfg.Server)
	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 1.0, cfg.Compiler.PauseScale)
	require.Empty(t, cfg.Path)
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ide.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
db:
  path: /tmp/ide.db
analysis:
  primary_model: anthropic/claude-3-opus
  timeout: 30s
compiler:
  pause_scale: 0
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/tmp/ide.db", cfg.DB.Path)
	require.Equal(t, "anthropic/claude-3-opus", cfg.Analysis.PrimaryModel)
	require.Equal(t, 30*time.Second, cfg.Analysis.Timeout)
	require.Zero(t, cfg.Compiler.PauseScale)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, path, cfg.Path)
}

func TestLoadFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ide.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[db]
driver = "postgres"
dsn = "postgres://localhost/ide"

[artifact]
endpoint = "localhost:9000"
bucket = "reports"
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DB.Driver)
	require.Equal(t, "postgres://localhost/ide", cfg.DB.DSN)
	require.Equal(t, "reports", cfg.Artifact.Bucket)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("IDE_SERVER_PORT", "7000")
	t.Setenv("IDE_AUTH_ENABLED", "true")
	t.Setenv("IDE_TRANSPORT_MODE", "stdio")
	t.Setenv("IDE_OPENROUTER_API_KEY", "sk-env")
	t.Setenv("IDE_COMPILER_PAUSE_SCALE", "0.5")
	t.Setenv("IDE_ANALYSIS_CACHE_SIZE", "16")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	require.Equal(t, 7000, cfg.Server.Port)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "sk-env", cfg.Analysis.APIKey)
	require.Equal(t, 0.5, cfg.Compiler.PauseScale)
	require.Equal(t, 16, cfg.Analysis.CacheSize)
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Setenv("IDE_SERVER_PORT", "abc")
	_, err := LoadFile("")
	require.Error(t, err)

	t.Setenv("IDE_SERVER_PORT", "")
	t.Setenv("IDE_DB_DRIVER", "postgres")
	_, err = LoadFile("")
	require.ErrorIs(t, err, ErrInvalid)

	t.Setenv("IDE_DB_DRIVER", "mysql")
	_, err = LoadFile("")
	require.ErrorIs(t, err, ErrInvalid)

	t.Setenv("IDE_DB_DRIVER", "")
	t.Setenv("IDE_LOG_LEVEL", "loud")
	_, err = LoadFile("")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	require.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ide.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, nil, func(c Config) { got <- c }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	select {
	case cfg := <-got:
		require.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	cancel()
	require.NoError(t, <-done)
}
