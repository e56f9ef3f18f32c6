package sitepass

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/sitepass/internal/logging"
	"github.com/aretw0/sitepass/pkg/conversation"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/induction"
	"github.com/aretw0/sitepass/pkg/locking"
	"github.com/aretw0/sitepass/pkg/maintenance"
	"github.com/aretw0/sitepass/pkg/ports"
)

// Service is the high-level entry point of sitepass.
// It wires the record store, locking and the three checkers behind one API
// shared by the HTTP, MCP and CLI adapters.
type Service struct {
	store         ports.TableStore
	locks         *locking.Manager
	conversations *conversation.Tracker
	inductions    *induction.Checker
	maintenance   *maintenance.Checker

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLocker enables distributed locking of conversation updates.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithClock overrides the clock used for Last Updated and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New builds a Service over store.
func New(store ports.TableStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	lockOpts := []locking.Option{locking.WithLogger(s.logger), locking.WithLockTTL(s.lockTTL)}
	if s.locker != nil {
		lockOpts = append(lockOpts, locking.WithLocker(s.locker))
	}
	s.locks = locking.NewManager(store, lockOpts...)

	s.conversations = conversation.NewTracker(s.locks,
		conversation.WithLogger(s.logger),
		conversation.WithHooks(s.hooks),
		conversation.WithClock(s.now),
	)
	s.inductions = induction.NewChecker(s.locks,
		induction.WithLogger(s.logger),
		induction.WithHooks(s.hooks),
	)
	s.maintenance = maintenance.NewChecker(s.locks,
		maintenance.WithLogger(s.logger),
		maintenance.WithHooks(s.hooks),
	)
	return s
}

// Advance applies one inbound message to its conversation.
func (s *Service) Advance(ctx context.Context, sig domain.Signals) (conversation.Outcome, error) {
	return s.conversations.Advance(ctx, sig)
}

// Locate returns the conversation keyed by (email, subject).
func (s *Service) Locate(ctx context.Context, email, subject string) (*domain.ConversationRecord, error) {
	return s.conversations.Locate(ctx, email, subject)
}

// Conversations lists every tracked conversation.
func (s *Service) Conversations(ctx context.Context) ([]domain.ConversationRecord, error) {
	return s.conversations.List(ctx)
}

// CheckInductions classifies engineers for a visit on maintenanceDate (YYYY-MM-DD).
func (s *Service) CheckInductions(ctx context.Context, company string, engineers []string, maintenanceDate string) ([]domain.InductionResult, error) {
	return s.inductions.Check(ctx, company, engineers, maintenanceDate)
}

// CheckWindow evaluates a requested date against the schedule of (equipment, company).
func (s *Service) CheckWindow(ctx context.Context, equipment, company string, requested time.Time) (domain.WindowResult, error) {
	return s.maintenance.CheckWindow(ctx, equipment, company, requested)
}

// CheckMaintenance is CheckWindow with a DD/MM/YY requested date.
func (s *Service) CheckMaintenance(ctx context.Context, equipment, company, requestedDate string) (domain.WindowResult, error) {
	return s.maintenance.Check(ctx, equipment, company, requestedDate)
}

// Transitions enumerates the conversation state machine.
func (s *Service) Transitions() []domain.Transition {
	return domain.Transitions()
}

// Store returns the underlying table store.
func (s *Service) Store() ports.TableStore {
	return s.store
}

// Locks returns the lock manager guarding table updates.
func (s *Service) Locks() *locking.Manager {
	return s.locks
}
