package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// chdir switches to a scratch directory so no stray pricelist.yaml or .env
// from the repository is picked up
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Address())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, SourceFile, cfg.Catalog.Source)
	assert.Equal(t, "data/maintenance.json", cfg.Catalog.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "#0ea5e9", cfg.PWA.ThemeColor)
	assert.Equal(t, "#0b1220", cfg.PWA.BackgroundColor)
}

func TestLoad_File(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  readtimeout: 1m
catalog:
  source: http
  url: https://prices.example.test/data/maintenance.json
cache:
  ttl: 30s
log:
  level: debug
  json: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, SourceHTTP, cfg.Catalog.Source)
	assert.Equal(t, "https://prices.example.test/data/maintenance.json", cfg.Catalog.URL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("PRICELIST_SERVER_PORT", "7000")
	t.Setenv("PRICELIST_CATALOG_SOURCE", "csv")
	t.Setenv("PRICELIST_CATALOG_FILE", "prices.csv")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, SourceCSV, cfg.Catalog.Source)
	assert.Equal(t, "prices.csv", cfg.Catalog.File)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PRICELIST_LOG_LEVEL=warn\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PRICELIST_LOG_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := chdir(t)
	_, err := Load(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t)
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = Duration(-time.Second) }},
		{"http without url", func(c *Config) { c.Catalog.Source = SourceHTTP; c.Catalog.URL = "" }},
		{"file without path", func(c *Config) { c.Catalog.File = "" }},
		{"unknown source", func(c *Config) { c.Catalog.Source = "ftp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	b, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"5m"`), &d))
	assert.Equal(t, 5*time.Minute, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, Duration(0), d)

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}

func TestDuration_YAML(t *testing.T) {
	type holder struct {
		Timeout Duration `yaml:"timeout"`
	}

	b, err := yaml.Marshal(holder{Timeout: Duration(30 * time.Second)})
	require.NoError(t, err)
	assert.Contains(t, string(b), "30s")

	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("timeout: 2h"), &h))
	assert.Equal(t, 2*time.Hour, h.Timeout.Std())

	assert.Error(t, yaml.Unmarshal([]byte("timeout: [1, 2]"), &h))
}
