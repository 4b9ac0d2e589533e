/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults
  2. File: .yaml/.yml (gopkg.in/yaml.v3) or .toml (BurntSushi/toml).
     A missing file is not an error; the defaults stand.
  3. Environment: WAGER_PORT, WAGER_DB_PATH, WAGER_LOG_LEVEL,
     WAGER_LOG_FORMAT, WAGER_CORS_ORIGINS (comma separated),
     WAGER_METRICS_ENABLED
  4. Command-line flags, applied by cmd/server

EXAMPLE (wager.yaml):
  server:
    port: 8080
    shutdown_timeout: 30s
  database:
    path: ./data/wagers.db
  log:
    level: debug
  cors:
    allowed_origins: ["http://localhost:5173"]
*/
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds every server setting.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	CORS     CORSConfig     `yaml:"cors" toml:"cors"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
	Resettle ResettleConfig `yaml:"resettle" toml:"resettle"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host" toml:"host"`
	Port            int           `yaml:"port" toml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the SQLite path. ":memory:" keeps everything in RAM.
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // json, text
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// ResettleConfig controls the background loop that settles matches whose
// scores changed since their last stored run.
type ResettleConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Interval time.Duration `yaml:"interval" toml:"interval"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{Path: "wagers.db"},
		Log:      LogConfig{Level: "info", Format: "json"},
		CORS:     CORSConfig{AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"}},
		Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
		Resettle: ResettleConfig{Enabled: false, Interval: time.Minute},
	}
}

// Load reads the file at path (if any) over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults stand
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to unmarshal TOML config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to unmarshal YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("WAGER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WAGER_PORT value: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("WAGER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("WAGER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WAGER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("WAGER_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
	if v := os.Getenv("WAGER_METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WAGER_METRICS_ENABLED value: %w", err)
		}
		cfg.Metrics.Enabled = enabled
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path %q must start with /", c.Metrics.Path)
	}
	if c.Resettle.Enabled && c.Resettle.Interval <= 0 {
		return fmt.Errorf("resettle interval must be positive, got %s", c.Resettle.Interval)
	}
	return nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}

// NewLogger builds the process logger from the log settings.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
