package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/sitepass"
	"github.com/aretw0/sitepass/internal/config"
	"github.com/aretw0/sitepass/internal/storefactory"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is a fully wired sitepass process: store stack, metrics and service.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Stores   *storefactory.Stores
	Service  *sitepass.Service
}

// Bootstrap opens the configured store and builds the service. Extra hooks
// (for example an event stream) are merged after the metrics and log hooks.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	stores, err := storefactory.Open(ctx, cfg,
		storefactory.WithLogger(logger),
		storefactory.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	opts := []sitepass.Option{
		sitepass.WithLogger(logger),
		sitepass.WithLockTTL(cfg.Lock.TTL),
		sitepass.WithLifecycleHooks(metrics.Hooks()),
		sitepass.WithLifecycleHooks(observability.LogHooks(logger)),
	}
	if stores.Locker != nil {
		opts = append(opts, sitepass.WithLocker(stores.Locker))
	}
	for _, h := range hooks {
		opts = append(opts, sitepass.WithLifecycleHooks(h))
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics,
		Stores:   stores,
		Service:  sitepass.New(stores.Store, opts...),
	}, nil
}

// Close releases the store connections.
func (a *App) Close() error {
	return a.Stores.Close()
}
