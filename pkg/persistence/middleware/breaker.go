package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/sitepass/internal/logging"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/sony/gobreaker"
)

// BreakerConfig holds configuration for the store circuit breaker.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// The breaker trips once MinRequests were seen in the interval and the
	// failure ratio reached FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the store breaker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "record-store",
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type breakerMiddleware struct {
	next ports.TableStore
	cb   *gobreaker.CircuitBreaker
}

// NewCircuitBreakerMiddleware stops calling a failing store for a while.
// Rejected calls fail with a StoreUnavailable error.
func NewCircuitBreakerMiddleware(cfg BreakerConfig, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(next ports.TableStore) ports.TableStore {
		cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: func(err error) bool {
				// A canceled caller says nothing about the store's health.
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
		return &breakerMiddleware{next: next, cb: cb}
	}
}

func (m *breakerMiddleware) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	out, err := m.cb.Execute(func() (interface{}, error) {
		return m.next.ReadTable(ctx, table)
	})
	if err != nil {
		return nil, rejected("read "+string(table), err)
	}
	rows, _ := out.([]ports.Row)
	return rows, nil
}

func (m *breakerMiddleware) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.next.WriteTable(ctx, table, rows)
	})
	if err != nil {
		return rejected("write "+string(table), err)
	}
	return nil
}

func rejected(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.StoreUnavailable(op, err)
	}
	return err
}
