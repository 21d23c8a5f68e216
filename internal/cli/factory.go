package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/adapters/file"
	redisStore "github.com/aretw0/waypoint/internal/adapters/redis"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	redisLock "github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Runtime holds what every command builds from the configuration.
type Runtime struct {
	Config   config.Config
	Logger   *slog.Logger
	Sessions *session.Manager
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	closers []func() error
}

// NewRuntime wires the store, session manager and metrics described by cfg.
func NewRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	store, locker, closer, err := NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Sessions: session.NewManager(store, sessionOpts...),
		Registry: reg,
		Metrics:  observability.NewMetrics(reg),
	}
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}
	return rt, nil
}

// Open restores or starts the navigator of sessionID.
func (r *Runtime) Open(ctx context.Context, sessionID, root string, opts ...waypoint.Option) (*waypoint.Navigator, error) {
	base := []waypoint.Option{
		waypoint.WithLogger(r.Logger),
		waypoint.WithLifecycleHooks(observability.LoggingHooks(r.Logger)),
		waypoint.WithMetrics(r.Metrics),
		waypoint.WithSessionManager(r.Sessions),
		waypoint.WithSegmentDuration(r.Config.Animation.SegmentDuration),
	}
	return waypoint.Open(ctx, sessionID, root, append(base, opts...)...)
}

// Close releases store connections.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewStore builds the snapshot store selected by cfg, wrapped in the configured
// middlewares. The locker is nil unless the store is shared between processes.
func NewStore(cfg config.Store) (ports.SnapshotStore, ports.DistributedLocker, func() error, error) {
	var (
		store  ports.SnapshotStore
		locker ports.DistributedLocker
		closer func() error
	)

	switch cfg.Kind {
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.Path)
	case config.StoreRedis:
		rs := redisStore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisStore.WithPrefix(cfg.Redis.Prefix),
			redisStore.WithTTL(cfg.Redis.TTL),
		)
		store = rs
		locker = redisLock.NewLocker(rs.Client(), cfg.Redis.Prefix)
		closer = rs.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}

	// Ephemeral slots are dropped before the snapshot is sealed.
	var mws []middleware.Middleware
	if len(cfg.Ephemeral) > 0 {
		mws = append(mws, middleware.NewEphemeralSlotsMiddleware(cfg.Ephemeral))
	}
	if cfg.EncryptionKey != "" {
		enc, err := encryptionConfig(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}

func encryptionConfig(cfg config.Store) (middleware.EncryptionConfig, error) {
	active, err := decodeKey(cfg.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("invalid encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.EncryptionFallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("invalid encryption_fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
