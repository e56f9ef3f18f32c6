package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition     EventType = "conversation_transition"
	EventInductionCheck EventType = "induction_check"
	EventWindowCheck    EventType = "window_check"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TransitionEvent is emitted after a conversation status was persisted.
type TransitionEvent struct {
	EventBase
	Email    string   `json:"email"`
	Subject  string   `json:"subject"`
	From     Status   `json:"from,omitempty"`
	To       Status   `json:"to"`
	Evidence Evidence `json:"evidence"`
	Created  bool     `json:"created"`
}

// InductionEvent is emitted once per engineer evaluated.
type InductionEvent struct {
	EventBase
	Company string          `json:"company"`
	Result  InductionResult `json:"result"`
}

// WindowEvent is emitted after a maintenance window check.
type WindowEvent struct {
	EventBase
	Equipment string `json:"equipment"`
	Company   string `json:"company"`
	Found     bool   `json:"found"`
	Within    bool   `json:"within"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnTransition     func(context.Context, *TransitionEvent)
	OnInductionCheck func(context.Context, *InductionEvent)
	OnWindowCheck    func(context.Context, *WindowEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition:     chain(h.OnTransition, other.OnTransition),
		OnInductionCheck: chain(h.OnInductionCheck, other.OnInductionCheck),
		OnWindowCheck:    chain(h.OnWindowCheck, other.OnWindowCheck),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
