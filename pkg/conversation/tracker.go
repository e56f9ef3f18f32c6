// Package conversation tracks scheduling conversations through the status
// state machine and persists each step.
package conversation

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

// Messages returned with an Outcome.
const (
	MessageCreated       = "New conversation created."
	MessageUpdatedFormat = "Conversation updated to %s."
)

// Outcome is the result of Advance.
type Outcome struct {
	Status      domain.Status
	Instruction string
	Created     bool
	Record      domain.ConversationRecord
}

// Message renders the human readable summary of the outcome.
func (o Outcome) Message() string {
	if o.Created {
		return MessageCreated
	}
	return fmt.Sprintf(MessageUpdatedFormat, o.Status)
}

// Tracker implements Locate and Advance over the conversations table.
type Tracker struct {
	locks  *locking.Manager
	logger *slog.Logger
	now    func() time.Time
	hooks  domain.LifecycleHooks
}

// Option configures the Tracker.
type Option func(*Tracker)

// WithLogger configures a logger for the Tracker.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithClock overrides the clock used for Last Updated.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tracker) {
		t.hooks = hooks
	}
}

// NewTracker creates a Tracker whose writes go through locks.
func NewTracker(locks *locking.Manager, opts ...Option) *Tracker {
	t := &Tracker{
		locks:  locks,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Locate returns the first conversation matching (email, subject).
func (t *Tracker) Locate(ctx context.Context, email, subject string) (*domain.ConversationRecord, error) {
	all, err := t.locks.Read(ctx, ports.TableConversations)
	if err != nil {
		return nil, err
	}
	i, rec, err := find(all, email, subject)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return nil, domain.ErrRecordNotFound
	}
	return &rec, nil
}

// List returns every tracked conversation in stored order.
func (t *Tracker) List(ctx context.Context) ([]domain.ConversationRecord, error) {
	all, err := t.locks.Read(ctx, ports.TableConversations)
	if err != nil {
		return nil, err
	}
	return rows.DecodeAll(all, rows.Conversation)
}

// Advance applies one inbound message to its conversation: an existing
// conversation moves along the state machine, an unknown one is created with
// the initial status. The whole cycle runs under the conversations lock and
// either the new table is written or nothing is.
func (t *Tracker) Advance(ctx context.Context, sig domain.Signals) (Outcome, error) {
	sig.Email = strings.TrimSpace(sig.Email)
	sig.Subject = strings.TrimSpace(sig.Subject)
	if sig.Email == "" || sig.Subject == "" {
		field := "email"
		if sig.Email != "" {
			field = "subject"
		}
		return Outcome{}, domain.Validation("advance conversation", field, "Missing required fields: email or subject.")
	}

	ev := sig.Evidence()
	var (
		out  Outcome
		from domain.Status
	)
	err := t.locks.Update(ctx, ports.TableConversations, func(ctx context.Context, all []ports.Row) ([]ports.Row, bool, error) {
		i, rec, err := find(all, sig.Email, sig.Subject)
		if err != nil {
			return nil, false, err
		}
		now := t.now()

		if i < 0 {
			rec = domain.NewConversation(sig.Email, sig.Subject, domain.Initial(ev), now)
			out = Outcome{Status: rec.Status, Created: true, Record: rec}
			return append(all, rows.FromConversation(rec)), true, nil
		}

		from = rec.Status
		rec.Status = domain.Next(rec.Status, ev)
		rec.LastUpdated = domain.DateOf(now)
		out = Outcome{Status: rec.Status, Record: rec}

		// Only the tracked cells change; cached and extra columns are kept.
		rows.Merge(all[i], ports.Row{
			"Status":       rec.Status.String(),
			"Last Updated": rec.LastUpdated.Format(domain.DateLayout),
		})
		return all, true, nil
	})
	if err != nil {
		t.logger.Error("advance failed", "email", sig.Email, "subject", sig.Subject, "error", err)
		return Outcome{}, err
	}

	out.Instruction = domain.InstructionFor(out.Status)
	if t.hooks.OnTransition != nil {
		t.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Timestamp: t.now(), Type: domain.EventTransition},
			Email:     sig.Email,
			Subject:   sig.Subject,
			From:      from,
			To:        out.Status,
			Evidence:  ev,
			Created:   out.Created,
		})
	}
	return out, nil
}

// find returns the index and record of the first row matching the key, or -1.
func find(all []ports.Row, email, subject string) (int, domain.ConversationRecord, error) {
	for i, r := range all {
		rec, err := rows.Conversation(r)
		if err != nil {
			return -1, domain.ConversationRecord{}, err
		}
		if rec.Matches(email, subject) {
			return i, rec, nil
		}
	}
	return -1, domain.ConversationRecord{}, nil
}
