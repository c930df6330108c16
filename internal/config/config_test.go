package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	cfg, path, err := Load(LoadOptions{SkipSearch: true})
	require.NoError(t, err)
	assert.Empty(t, path)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownGrace)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, "http://localhost:5000", cfg.Recommender.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Recommender.Timeout)
	assert.True(t, cfg.Recommender.Breaker.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recoform.yaml")
	content := `
server:
  addr: ":9000"
  session_ttl: 5m
recommender:
  base_url: http://reco.internal:5000
  timeout: 3s
log:
  level: debug
ui:
  title: Shop picks
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("RECOFORM_RECOMMENDER__TIMEOUT", "7s")
	t.Setenv("RECOFORM_LOG__FORMAT", "json")

	cfg, used, err := Load(LoadOptions{
		Path:      path,
		Overrides: map[string]any{"log.level": "warn"},
	})
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, ":9000", cfg.Server.Addr, "file beats defaults")
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownGrace, "untouched keys keep defaults")
	assert.Equal(t, "http://reco.internal:5000", cfg.Recommender.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Recommender.Timeout, "env beats file")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Level, "overrides beat env")
	assert.Equal(t, "Shop picks", cfg.UI.Title)
}

func TestLoadPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o600))
	t.Setenv(PathEnvVar, path)

	cfg, used, err := Load(LoadOptions{SkipSearch: true})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, _, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		key       string
	}{
		{name: "base url scheme", overrides: map[string]any{"recommender.base_url": "ftp://host"}, key: "recommender.base_url"},
		{name: "empty base url", overrides: map[string]any{"recommender.base_url": ""}, key: "recommender.base_url"},
		{name: "zero timeout", overrides: map[string]any{"recommender.timeout": "0s"}, key: "recommender.timeout"},
		{name: "log level", overrides: map[string]any{"log.level": "loud"}, key: "log.level"},
		{name: "failure ratio", overrides: map[string]any{"recommender.breaker.failure_ratio": 1.5}, key: "recommender.breaker.failure_ratio"},
		{name: "icon key", overrides: map[string]any{"ui.icons": map[string]any{"nearest": "<svg/>"}}, key: "ui.icons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(LoadOptions{SkipSearch: true, Overrides: tt.overrides})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestClientConfigConversion(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Recommender.BaseURL = "http://example.test"
	cfg.Recommender.Breaker.MinRequests = 9

	cc := cfg.Recommender.ClientConfig()
	assert.Equal(t, "http://example.test", cc.BaseURL)
	assert.Equal(t, uint32(9), cc.Breaker.MinRequests)
	assert.Equal(t, cfg.Recommender.Timeout, cc.Timeout)

	lc := cfg.Log.LoggingConfig()
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, "console", lc.Format)
}

func TestYAMLRoundTripsThroughLoad(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ":8181"
	cfg.Recommender.Timeout = 2500 * time.Millisecond

	out, err := cfg.YAML()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	recommender := decoded["recommender"].(map[string]any)
	assert.Equal(t, "2.5s", recommender["timeout"])

	path := filepath.Join(t.TempDir(), "dump.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o600))
	loaded, _, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, ":8181", loaded.Server.Addr)
	assert.Equal(t, 2500*time.Millisecond, loaded.Recommender.Timeout)
}
