// Package config loads the waypoint CLI configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration when no flag is given.
const DefaultPath = "waypoint.yaml"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel  string    `mapstructure:"log_level"`
	Store     Store     `mapstructure:"store"`
	Animation Animation `mapstructure:"animation"`
	HTTP      HTTP      `mapstructure:"http"`
}

// Store selects and configures the snapshot store.
type Store struct {
	Kind  string `mapstructure:"kind"`
	Path  string `mapstructure:"path"`
	Redis Redis  `mapstructure:"redis"`
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey          string   `mapstructure:"encryption_key"`
	EncryptionFallbackKeys []string `mapstructure:"encryption_fallback_keys"`
	// Ephemeral lists slot patterns that are never persisted.
	Ephemeral []string `mapstructure:"ephemeral_slots"`
}

type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Animation configures the render clock.
type Animation struct {
	SegmentDuration time.Duration `mapstructure:"segment_duration"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store: Store{
			Kind: StoreMemory,
			Path: ".waypoint/sessions",
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "waypoint:session:",
			},
		},
		Animation: Animation{SegmentDuration: 500 * time.Millisecond},
		HTTP:      HTTP{Addr: ":8080"},
	}
}

// Load reads path and overlays it on the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving unset keys untouched.
func Parse(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid config: unknown store kind %q", c.Store.Kind)
	}
	if c.Store.Kind == StoreFile && c.Store.Path == "" {
		return errors.New("invalid config: store.path is required for the file store")
	}
	if c.Store.Kind == StoreRedis && c.Store.Redis.Addr == "" {
		return errors.New("invalid config: store.redis.addr is required for the redis store")
	}
	for _, p := range c.Store.Ephemeral {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid config: ephemeral slot pattern %q: %w", p, err)
		}
	}
	if c.Animation.SegmentDuration < 0 {
		return errors.New("invalid config: animation.segment_duration must not be negative")
	}
	return nil
}
