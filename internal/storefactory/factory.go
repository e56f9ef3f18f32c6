// Package storefactory builds the record store and lock backend selected by
// the configuration.
package storefactory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/sitepass/internal/adapters/file"
	"github.com/aretw0/sitepass/internal/adapters/postgres"
	"github.com/aretw0/sitepass/internal/adapters/xlsx"
	"github.com/aretw0/sitepass/internal/config"
	"github.com/aretw0/sitepass/internal/logging"
	"github.com/aretw0/sitepass/pkg/adapters/memory"
	"github.com/aretw0/sitepass/pkg/adapters/redis"
	"github.com/aretw0/sitepass/pkg/observability"
	"github.com/aretw0/sitepass/pkg/persistence/middleware"
	"github.com/aretw0/sitepass/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Stores is the opened storage stack.
type Stores struct {
	// Store is the decorated store every service call goes through.
	Store ports.TableStore
	// Base is the raw adapter, for table listing and imports.
	Base ports.TableStore
	// Locker is set when distributed locking is enabled.
	Locker ports.DistributedLocker

	closers []func() error
}

// Close releases connections held by the adapters.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

type options struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger used by the logging and breaker middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics instruments store calls.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Open builds the store named by cfg.Store.Backend, wraps it in the
// middleware chain and, when cfg.Lock.Distributed is set, a Redis locker.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Stores, error) {
	o := &options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Stores{}
	var client *backend.Client

	switch cfg.Store.Backend {
	case config.BackendMemory:
		s.Base = memory.NewStore()
	case config.BackendFile:
		s.Base = file.New(cfg.Store.Dir)
	case config.BackendXLSX:
		s.Base = xlsx.New(cfg.Store.Dir)
	case config.BackendRedis:
		rs := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPass, cfg.Store.RedisDB, redis.WithPrefix(cfg.Store.RedisPrefix))
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Store.RedisAddr, err)
		}
		s.closers = append(s.closers, rs.Close)
		client = rs.Client()
		s.Base = rs
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		ps, err := postgres.New(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		s.closers = append(s.closers, ps.Close)
		s.Base = ps
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Lock.Distributed {
		if client == nil {
			client = backend.NewClient(&backend.Options{
				Addr:     cfg.Store.RedisAddr,
				Password: cfg.Store.RedisPass,
				DB:       cfg.Store.RedisDB,
			})
			if err := client.Ping(ctx).Err(); err != nil {
				client.Close()
				s.Close()
				return nil, fmt.Errorf("failed to connect to redis lock backend at %s: %w", cfg.Store.RedisAddr, err)
			}
			s.closers = append(s.closers, client.Close)
		}
		s.Locker = redis.NewLocker(client, cfg.Store.RedisPrefix)
	}

	s.Store = middleware.Chain(s.Base, chain(cfg.Store, o)...)
	o.logger.Debug("Record store opened", "backend", cfg.Store.Backend, "distributed_lock", s.Locker != nil)
	return s, nil
}

func chain(cfg config.StoreConfig, o *options) []middleware.Middleware {
	mws := []middleware.Middleware{middleware.NewLoggingMiddleware(o.logger)}
	if o.metrics != nil {
		mws = append(mws, middleware.NewMetricsMiddleware(o.metrics))
	}
	if cfg.Breaker {
		mws = append(mws, middleware.NewCircuitBreakerMiddleware(middleware.DefaultBreakerConfig(), o.logger))
	}
	return mws
}
