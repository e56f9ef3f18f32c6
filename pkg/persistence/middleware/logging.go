package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/sitepass/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.TableStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at error level.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.TableStore) ports.TableStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	start := time.Now()
	rows, err := m.next.ReadTable(ctx, table)
	m.log(ctx, "read", table, len(rows), start, err)
	return rows, err
}

func (m *loggingMiddleware) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	start := time.Now()
	err := m.next.WriteTable(ctx, table, rows)
	m.log(ctx, "write", table, len(rows), start, err)
	return err
}

func (m *loggingMiddleware) log(ctx context.Context, op string, table ports.Table, n int, start time.Time, err error) {
	if err != nil {
		m.logger.ErrorContext(ctx, "store operation failed", "op", op, "table", table, "error", err)
		return
	}
	m.logger.DebugContext(ctx, "store operation", "op", op, "table", table, "rows", n, "duration", time.Since(start))
}
