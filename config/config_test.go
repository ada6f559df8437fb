package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	w, h := cfg.Page.PagePoints()
	assert.InDelta(t, 595.28, w, 0.01)
	assert.InDelta(t, 841.89, h, 0.01)
	assert.Equal(t, BackendBuiltin, cfg.Render.Backend)
	assert.Equal(t, 100*time.Millisecond, cfg.Render.SettleDelay.Std())
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
render:
  backend: chrome
  settle_delay: 250ms
cache:
  type: redis
  ttl: 10m
  redis:
    addr: localhost:6379
server:
  listen: ":9090"
`))
	require.NoError(t, err)
	assert.Equal(t, BackendChrome, cfg.Render.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Render.SettleDelay.Std())
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL.Std())
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	// untouched values keep their defaults
	assert.Equal(t, 2.0, cfg.Render.Scale)
	assert.Equal(t, 1<<20, cfg.Server.MaxBodyBytes)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "render:\n  colour: blue\n"},
		{"bad duration", "render:\n  settle_delay: soon\n"},
		{"bad backend", "render:\n  backend: wkhtmltopdf\n"},
		{"redis without addr", "cache:\n  type: redis\n"},
		{"bad cache type", "cache:\n  type: disk\n"},
		{"zero page", "page:\n  width_mm: 0\n"},
		{"metrics without namespace", "metrics:\n  namespace: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Console.Enabled)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
