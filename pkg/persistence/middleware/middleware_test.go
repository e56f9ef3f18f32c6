package middleware_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/observability"
	"github.com/aretw0/sitepass/pkg/persistence/middleware"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Contract(t *testing.T) {
	store := middleware.Chain(NewMockStore(),
		middleware.NewLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))),
		middleware.NewMetricsMiddleware(observability.NewMetrics(nil)),
		middleware.NewCircuitBreakerMiddleware(middleware.DefaultBreakerConfig(), nil),
	)
	ports.RunTableStoreContract(t, store)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	mock := NewMockStore()
	mock.Fail = true

	cfg := middleware.DefaultBreakerConfig()
	cfg.MinRequests = 3
	cfg.FailureThreshold = 1
	cfg.Timeout = time.Minute
	store := middleware.NewCircuitBreakerMiddleware(cfg, nil)(mock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.ReadTable(ctx, ports.TableConversations)
		require.ErrorIs(t, err, errBackend)
	}

	_, err := store.ReadTable(ctx, ports.TableConversations)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, domain.KindStoreUnavailable, domain.KindOf(err))
	assert.Equal(t, 3, mock.Calls, "open breaker must not reach the store")

	err = store.WriteTable(ctx, ports.TableConversations, nil)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMetricsMiddleware_RecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	mock := NewMockStore()
	store := middleware.NewMetricsMiddleware(metrics)(mock)
	ctx := context.Background()

	require.NoError(t, store.WriteTable(ctx, ports.TableInductions, nil))
	mock.Fail = true
	_, _ = store.ReadTable(ctx, ports.TableInductions)

	count, err := testutil.GatherAndCount(reg, "sitepass_store_operation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per (table, op, outcome)")
}

func TestLoggingMiddleware_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mock := NewMockStore()
	store := middleware.NewLoggingMiddleware(logger)(mock)

	_, _ = store.ReadTable(context.Background(), ports.TableMaintenance)
	assert.Contains(t, buf.String(), "store operation")

	mock.Fail = true
	_, _ = store.ReadTable(context.Background(), ports.TableMaintenance)
	assert.Contains(t, buf.String(), "store operation failed")
	assert.Contains(t, buf.String(), "backend down")
}
