package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wager-engine/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "wager.yaml", `
server:
  port: 9090
  shutdown_timeout: 5s
database:
  path: ./data/test.db
log:
  level: debug
  format: text
cors:
  allowed_origins: ["https://scores.example.com"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, "./data/test.db", cfg.Database.Path)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, []string{"https://scores.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "wager.toml", `
[server]
port = 7070

[database]
path = ":memory:"

[metrics]
enabled = false
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "wager.yaml", "server:\n  port: 9090\n")
	t.Setenv("WAGER_PORT", "6060")
	t.Setenv("WAGER_DB_PATH", "/tmp/env.db")
	t.Setenv("WAGER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WAGER_METRICS_ENABLED", "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		env     map[string]string
	}{
		{name: "port out of range", file: "c.yaml", content: "server:\n  port: 70000\n"},
		{name: "unknown level", file: "c.yaml", content: "log:\n  level: chatty\n"},
		{name: "unknown format", file: "c.yaml", content: "log:\n  format: xml\n"},
		{name: "resettle without interval", file: "c.yaml", content: "resettle:\n  enabled: true\n  interval: 0s\n"},
		{name: "bad yaml", file: "c.yaml", content: "server: [\n"},
		{name: "unsupported extension", file: "c.ini", content: "port=1\n"},
		{name: "bad env port", file: "c.yaml", content: "", env: map[string]string{"WAGER_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := config.LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "match", "m1")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"match":"m1"`)
}
