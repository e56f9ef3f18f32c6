// Package maintenance checks requested visit dates against the pre-approved
// inspection months of each piece of equipment.
package maintenance

import (
	"context"
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

const op = "check maintenance window"

// Checker evaluates requests against the maintenanceSchedules table.
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

// NewChecker creates a maintenance window Checker.
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

// NotFoundMessage is the message of the RecordNotFound error for an unknown
// (equipment, company) pair. Both names appear normalized.
func NotFoundMessage(equipment, company string) string {
	return fmt.Sprintf("No maintenance record found for '%s' under '%s'.",
		domain.NormalizeKey(equipment), domain.NormalizeKey(company))
}

// CheckWindow decides whether requested falls in one of the scheduled months
// of the first record matching (equipment, company).
func (c *Checker) CheckWindow(ctx context.Context, equipment, company string, requested time.Time) (domain.WindowResult, error) {
	if strings.TrimSpace(equipment) == "" {
		return domain.WindowResult{}, domain.Validation(op, "equipment_name", "Missing equipment name.")
	}
	if strings.TrimSpace(company) == "" {
		return domain.WindowResult{}, domain.Validation(op, "company_name", "Missing company name.")
	}

	all, err := c.locks.Read(ctx, ports.TableMaintenance)
	if err != nil {
		return domain.WindowResult{}, err
	}

	for _, r := range all {
		rec, err := rows.Maintenance(r)
		if err != nil {
			return domain.WindowResult{}, domain.StoreUnavailable("decode maintenance schedules", err)
		}
		if !rec.Matches(equipment, company) {
			continue
		}
		res := domain.EvaluateWindow(rec.ScheduledMonths(), requested)
		c.emit(ctx, equipment, company, true, res.WithinWindow)
		return res, nil
	}

	c.emit(ctx, equipment, company, false, false)
	c.logger.Info("no maintenance record", "equipment", equipment, "company", company)
	return domain.WindowResult{}, domain.NotFound(op, NotFoundMessage(equipment, company))
}

// Check parses a DD/MM/YY date and runs CheckWindow.
func (c *Checker) Check(ctx context.Context, equipment, company, requestedDate string) (domain.WindowResult, error) {
	requested, err := domain.ParseRequestedDate(requestedDate)
	if err != nil {
		return domain.WindowResult{}, err
	}
	return c.CheckWindow(ctx, equipment, company, requested)
}

func (c *Checker) emit(ctx context.Context, equipment, company string, found, within bool) {
	if c.hooks.OnWindowCheck == nil {
		return
	}
	c.hooks.OnWindowCheck(ctx, &domain.WindowEvent{
		EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventWindowCheck},
		Equipment: equipment,
		Company:   company,
		Found:     found,
		Within:    within,
	})
}
