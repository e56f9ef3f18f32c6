// Package induction decides, per engineer, whether a safety induction is
// valid on the day of a maintenance visit.
package induction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/sitepass/internal/logging"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/locking"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/aretw0/sitepass/pkg/rows"
)

const op = "check inductions"

// Checker evaluates engineers against the inductions table.
type Checker struct {
	locks  *locking.Manager
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures the Checker.
type Option func(*Checker)

// WithLogger configures a logger for the Checker.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Checker) {
		c.hooks = hooks
	}
}

// NewChecker creates an induction Checker.
func NewChecker(locks *locking.Manager, opts ...Option) *Checker {
	c := &Checker{
		locks:  locks,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check classifies each engineer for the visit on maintenanceDate (YYYY-MM-DD).
// Results follow the order of engineers. A missing or unparsable date fails
// the whole call with ErrMissingDate.
func (c *Checker) Check(ctx context.Context, company string, engineers []string, maintenanceDate string) ([]domain.InductionResult, error) {
	if strings.TrimSpace(maintenanceDate) == "" {
		return nil, &domain.Error{
			Kind:    domain.KindValidation,
			Op:      op,
			Field:   "maintenance_date",
			Message: "Missing maintenance date.",
			Err:     domain.ErrMissingDate,
		}
	}
	visit, err := domain.ParseDate("maintenance_date", maintenanceDate)
	if err != nil {
		var de *domain.Error
		errors.As(err, &de)
		de.Op = op
		de.Err = fmt.Errorf("%w: %w", domain.ErrMissingDate, de.Err)
		return nil, de
	}
	if strings.TrimSpace(company) == "" {
		return nil, domain.Validation(op, "company", "Missing company.")
	}

	all, err := c.locks.Read(ctx, ports.TableInductions)
	if err != nil {
		return nil, err
	}
	records, err := rows.DecodeAll(all, rows.Induction)
	if err != nil {
		return nil, domain.StoreUnavailable("decode inductions", err)
	}

	results := make([]domain.InductionResult, 0, len(engineers))
	for _, name := range engineers {
		res := classify(records, company, name, visit)
		results = append(results, res)
		c.emit(ctx, company, res)
	}
	return results, nil
}

func classify(records []domain.InductionRecord, company, name string, visit time.Time) domain.InductionResult {
	res := domain.InductionResult{Engineer: name}
	for _, rec := range records {
		if !rec.Matches(company, name) {
			continue
		}
		expiry, err := domain.ParseExpiry(rec.Expiry)
		if err != nil {
			res.Classification = domain.Unparsable
			return res
		}
		res.Classification = domain.Classify(expiry, visit)
		res.Expiry = &expiry
		return res
	}
	res.Classification = domain.RequiresInduction
	return res
}

func (c *Checker) emit(ctx context.Context, company string, res domain.InductionResult) {
	if c.hooks.OnInductionCheck == nil {
		return
	}
	c.hooks.OnInductionCheck(ctx, &domain.InductionEvent{
		EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventInductionCheck},
		Company:   company,
		Result:    res,
	})
}

// Messages renders results as the operator sentences, in order.
func Messages(results []domain.InductionResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Message()
	}
	return out
}
