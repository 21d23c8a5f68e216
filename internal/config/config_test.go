package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waypoint.yaml")
	content := `
log_level: debug
store:
  kind: redis
  encryption_key: c2VjcmV0
  ephemeral_slots: ["scratch.*"]
  redis:
    addr: redis:6379
    db: 2
    ttl: 1h
animation:
  segment_duration: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "waypoint:session:", cfg.Store.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, []string{"scratch.*"}, cfg.Store.Ephemeral)
	assert.Equal(t, 250*time.Millisecond, cfg.Animation.SegmentDuration)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "store: ["},
		{"unknown key", "colour: blue"},
		{"unknown store kind", "store:\n  kind: tape"},
		{"bad duration", "animation:\n  segment_duration: soon"},
		{"negative duration", "animation:\n  segment_duration: -1s"},
		{"file without path", "store:\n  kind: file\n  path: \"\""},
		{"bad slot pattern", "store:\n  ephemeral_slots: [\"(\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, Parse([]byte(tt.yaml), &cfg))
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg := Default()
	require.NoError(t, Parse([]byte(""), &cfg))
	assert.Equal(t, Default(), cfg)
}
