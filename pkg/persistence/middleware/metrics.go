package middleware

import (
	"context"
	"time"

	"github.com/aretw0/sitepass/pkg/observability"
	"github.com/aretw0/sitepass/pkg/ports"
)

type metricsMiddleware struct {
	next    ports.TableStore
	metrics *observability.Metrics
}

// NewMetricsMiddleware records the duration and outcome of every store call.
func NewMetricsMiddleware(metrics *observability.Metrics) Middleware {
	return func(next ports.TableStore) ports.TableStore {
		return &metricsMiddleware{next: next, metrics: metrics}
	}
}

func (m *metricsMiddleware) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	start := time.Now()
	rows, err := m.next.ReadTable(ctx, table)
	m.observe(table, "read", start, err)
	return rows, err
}

func (m *metricsMiddleware) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	start := time.Now()
	err := m.next.WriteTable(ctx, table, rows)
	m.observe(table, "write", start, err)
	return err
}

func (m *metricsMiddleware) observe(table ports.Table, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.metrics.StoreDuration.WithLabelValues(string(table), op, outcome).Observe(time.Since(start).Seconds())
}
