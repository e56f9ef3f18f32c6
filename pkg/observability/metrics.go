package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors sitepass exports.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	Classifications *prometheus.CounterVec
	WindowChecks    *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitepass_conversation_transitions_total",
				Help: "Conversation status changes written to the store",
			},
			[]string{"from", "to", "created"},
		),
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitepass_induction_classifications_total",
				Help: "Engineers evaluated by induction checks, by outcome",
			},
			[]string{"classification"},
		),
		WindowChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitepass_window_checks_total",
				Help: "Maintenance window checks, by outcome",
			},
			[]string{"outcome"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitepass_store_operation_seconds",
				Help:    "Duration of record store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table", "operation", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.Classifications, m.WindowChecks, m.StoreDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			from := e.From.Identifier()
			if e.Created {
				from = "none"
			}
			m.Transitions.WithLabelValues(from, e.To.Identifier(), strconv.FormatBool(e.Created)).Inc()
		},
		OnInductionCheck: func(_ context.Context, e *domain.InductionEvent) {
			m.Classifications.WithLabelValues(string(e.Result.Classification)).Inc()
		},
		OnWindowCheck: func(_ context.Context, e *domain.WindowEvent) {
			outcome := "outside"
			switch {
			case !e.Found:
				outcome = "not_found"
			case e.Within:
				outcome = "within"
			}
			m.WindowChecks.WithLabelValues(outcome).Inc()
		},
	}
}

// LogHooks returns lifecycle hooks that write one audit line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "conversation_transition",
				"email", e.Email,
				"subject", e.Subject,
				"from", e.From,
				"to", e.To,
				"evidence", e.Evidence.Label(),
				"created", e.Created,
			)
		},
		OnInductionCheck: func(ctx context.Context, e *domain.InductionEvent) {
			logger.DebugContext(ctx, "induction_check",
				"company", e.Company,
				"engineer", e.Result.Engineer,
				"classification", e.Result.Classification,
			)
		},
		OnWindowCheck: func(ctx context.Context, e *domain.WindowEvent) {
			logger.DebugContext(ctx, "window_check",
				"equipment", e.Equipment,
				"company", e.Company,
				"found", e.Found,
				"within", e.Within,
			)
		},
	}
}
