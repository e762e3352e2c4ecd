// Package config loads server and CLI configuration from defaults, an
// optional YAML or TOML file, a .env file and IDE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a configuration value out of range.
var ErrInvalid = errors.New("invalid config")

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	DB        DBConfig        `yaml:"db" toml:"db"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Analysis  AnalysisConfig  `yaml:"analysis" toml:"analysis"`
	Compiler  CompilerConfig  `yaml:"compiler" toml:"compiler"`
	Artifact  ArtifactConfig  `yaml:"artifact" toml:"artifact"`

	// Path is the config file the values were read from, if any.
	Path string `yaml:"-" toml:"-"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type DBConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // sqlite or postgres
	Path   string `yaml:"path" toml:"path"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	Path  string `yaml:"path" toml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" toml:"mode"` // http or stdio
}

type AuthConfig struct {
	Enabled       bool   `yaml:"enabled" toml:"enabled"`
	DefaultTenant string `yaml:"default_tenant" toml:"default_tenant"`
}

type AnalysisConfig struct {
	APIKey        string        `yaml:"api_key" toml:"api_key"`
	BaseURL       string        `yaml:"base_url" toml:"base_url"`
	PrimaryModel  string        `yaml:"primary_model" toml:"primary_model"`
	FallbackModel string        `yaml:"fallback_model" toml:"fallback_model"`
	QuickModel    string        `yaml:"quick_model" toml:"quick_model"`
	Referer       string        `yaml:"referer" toml:"referer"`
	Title         string        `yaml:"title" toml:"title"`
	Timeout       time.Duration `yaml:"timeout" toml:"timeout"`
	CacheSize     int           `yaml:"cache_size" toml:"cache_size"`
}

type CompilerConfig struct {
	// PauseScale multiplies the narration pauses; 0 disables them.
	PauseScale float64 `yaml:"pause_scale" toml:"pause_scale"`
}

type ArtifactConfig struct {
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	Region    string `yaml:"region" toml:"region"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	Bucket    string `yaml:"bucket" toml:"bucket"`
	Prefix    string `yaml:"prefix" toml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl" toml:"use_ssl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB:        DBConfig{Driver: "sqlite", Path: "stackslab.db"},
		Log:       LogConfig{Level: "info"},
		Transport: TransportConfig{Mode: "http"},
		Auth:      AuthConfig{DefaultTenant: "default"},
		Analysis: AnalysisConfig{
			Referer:   "http://localhost:5173",
			Title:     "StacksLab IDE",
			Timeout:   60 * time.Second,
			CacheSize: 128,
		},
		Compiler: CompilerConfig{PauseScale: 1},
	}
}

// Load reads configuration. A .env file in the working directory, when
// present, only fills variables that are not already set.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFile(os.Getenv("IDE_CONFIG_PATH"))
}

// LoadFile reads configuration from path, which may be empty, and applies
// environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
		cfg.Path = path
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	str("IDE_SERVER_HOST", &cfg.Server.Host)
	str("IDE_DB_DRIVER", &cfg.DB.Driver)
	str("IDE_DB_PATH", &cfg.DB.Path)
	str("IDE_DB_DSN", &cfg.DB.DSN)
	str("IDE_LOG_LEVEL", &cfg.Log.Level)
	str("IDE_LOG_PATH", &cfg.Log.Path)
	str("IDE_TRANSPORT_MODE", &cfg.Transport.Mode)
	str("IDE_DEFAULT_TENANT", &cfg.Auth.DefaultTenant)
	str("OPENROUTER_API_KEY", &cfg.Analysis.APIKey)
	str("IDE_OPENROUTER_API_KEY", &cfg.Analysis.APIKey)
	str("IDE_ANALYSIS_BASE_URL", &cfg.Analysis.BaseURL)
	str("IDE_ANALYSIS_PRIMARY_MODEL", &cfg.Analysis.PrimaryModel)
	str("IDE_ANALYSIS_FALLBACK_MODEL", &cfg.Analysis.FallbackModel)
	str("IDE_ANALYSIS_QUICK_MODEL", &cfg.Analysis.QuickModel)
	str("IDE_ANALYSIS_REFERER", &cfg.Analysis.Referer)
	str("IDE_ARTIFACT_ENDPOINT", &cfg.Artifact.Endpoint)
	str("IDE_ARTIFACT_REGION", &cfg.Artifact.Region)
	str("IDE_ARTIFACT_ACCESS_KEY", &cfg.Artifact.AccessKey)
	str("IDE_ARTIFACT_SECRET_KEY", &cfg.Artifact.SecretKey)
	str("IDE_ARTIFACT_BUCKET", &cfg.Artifact.Bucket)
	str("IDE_ARTIFACT_PREFIX", &cfg.Artifact.Prefix)

	if v := os.Getenv("IDE_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IDE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("IDE_AUTH_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid IDE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = b
	}
	if v := os.Getenv("IDE_ARTIFACT_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid IDE_ARTIFACT_USE_SSL: %w", err)
		}
		cfg.Artifact.UseSSL = b
	}
	if v := os.Getenv("IDE_ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid IDE_ANALYSIS_TIMEOUT: %w", err)
		}
		cfg.Analysis.Timeout = d
	}
	if v := os.Getenv("IDE_ANALYSIS_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IDE_ANALYSIS_CACHE_SIZE: %w", err)
		}
		cfg.Analysis.CacheSize = n
	}
	if v := os.Getenv("IDE_COMPILER_PAUSE_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid IDE_COMPILER_PAUSE_SCALE: %w", err)
		}
		cfg.Compiler.PauseScale = f
	}
	return nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("%w: db.dsn is required for postgres", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown db.driver %q", ErrInvalid, c.DB.Driver)
	}
	if c.Transport.Mode != "http" && c.Transport.Mode != "stdio" {
		return fmt.Errorf("%w: unknown transport.mode %q", ErrInvalid, c.Transport.Mode)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	}
	if c.Compiler.PauseScale < 0 {
		return fmt.Errorf("%w: compiler.pause_scale must not be negative", ErrInvalid)
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}
