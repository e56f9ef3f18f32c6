package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewConversation_DerivedFields(t *testing.T) {
	now := time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC)
	rec := NewConversation("a@acme.co.uk", "Boiler service", StatusSchedulingRequest, now)

	assert.Equal(t, "acme.co.uk", rec.SenderDomain)
	assert.Equal(t, "acme", rec.CompanyName)
	assert.Equal(t, "acme.co.uk Boiler service", rec.Label)
	assert.Equal(t, date(2024, 3, 9), rec.LastUpdated)
	assert.True(t, rec.Matches(" A@ACME.co.uk ", "boiler SERVICE"))
	assert.False(t, rec.Matches("a@acme.co.uk", "Boiler"))
}

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, UnknownDomain, SenderDomain("no-at-sign"))
	assert.Equal(t, "b", SenderDomain("a@b@c"))
	assert.Equal(t, "example", CompanyName("example"))
}

func TestParseEngineerNames(t *testing.T) {
	assert.Nil(t, ParseEngineerNames(""))
	assert.Nil(t, ParseEngineerNames(" None "))
	assert.Nil(t, ParseEngineerNames("NULL"))
	assert.Equal(t, []string{"Alice", "Bob"}, ParseEngineerNames(" Alice , ,Bob,"))

	s := Signals{EngineerNames: ParseEngineerNames("none"), AttachmentPresent: ParseAttachmentFlag("YES")}
	assert.Equal(t, Evidence{Attachment: true}, s.Evidence())
	assert.False(t, ParseAttachmentFlag("no"))
}

func TestClassify_BoundaryIsInducted(t *testing.T) {
	m := date(2024, 6, 1)
	assert.Equal(t, Inducted, Classify(date(2024, 6, 1), m))
	assert.Equal(t, Inducted, Classify(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, Expired, Classify(date(2024, 5, 31), m))
	assert.Equal(t, Inducted, Classify(date(2025, 1, 1), m))
}

func TestInductionResult_Message(t *testing.T) {
	assert.Equal(t, "Alice is inducted for the scheduled date.",
		InductionResult{Engineer: "Alice", Classification: Inducted}.Message())
	assert.Equal(t, "Bob's induction expires before the scheduled date and needs to be redone.",
		InductionResult{Engineer: "Bob", Classification: Expired}.Message())
	assert.Equal(t, "Carol requires an induction.",
		InductionResult{Engineer: "Carol", Classification: RequiresInduction}.Message())
	assert.Equal(t, "Could not parse expiry date for Dan.",
		InductionResult{Engineer: "Dan", Classification: Unparsable}.Message())
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-06-01", date(2024, 6, 1)},
		{"2024-06-01 00:00:00", date(2024, 6, 1)},
		{"2024-06-01T10:00:00Z", date(2024, 6, 1)},
		{"2024-07-01T00:00:00", date(2024, 7, 1)},
		{"2024-06-01T23:59:59", date(2024, 6, 1)},
		{"01/06/2024", date(2024, 6, 1)},
		{"1 June 2024", date(2024, 6, 1)},
		{"45444", date(2024, 6, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseExpiry(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseExpiry("soon")
	assert.ErrorIs(t, err, ErrDateParse)
	_, err = ParseExpiry("  ")
	assert.ErrorIs(t, err, ErrDateParse)
}

func TestParseRequestedDate(t *testing.T) {
	got, err := ParseRequestedDate("15/03/24")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 15), got)

	got, err = ParseRequestedDate("5/3/24")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 5), got)

	_, err = ParseRequestedDate("2024-03-15")
	require.Error(t, err)
	assert.Equal(t, KindDateParse, KindOf(err))

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "requested_date", de.Field)
}

func TestMaintenanceRecord_ScheduledMonths(t *testing.T) {
	r := MaintenanceRecord{Equipment: "Boiler", Company: "Acme", Slots: [SlotCount]string{"March", " ", "June", "March"}}
	assert.Equal(t, []string{"March", "June", "March"}, r.ScheduledMonths())
	assert.True(t, r.Matches(" boiler", "ACME "))
}

func TestEvaluateWindow(t *testing.T) {
	t.Run("within", func(t *testing.T) {
		w := EvaluateWindow([]string{"March", "June"}, date(2024, 3, 15))
		assert.True(t, w.WithinWindow)
		assert.Empty(t, w.NextDueMonth)
		assert.Equal(t, "Yes", w.Status())
		assert.Equal(t, "The requested date 2024-03-15 is within the maintenance window.", w.Message())
	})

	t.Run("next due is first slot", func(t *testing.T) {
		w := EvaluateWindow([]string{"March", "June", "September", "December"}, date(2024, 7, 15))
		assert.False(t, w.WithinWindow)
		assert.Equal(t, "March", w.NextDueMonth)
		assert.Equal(t, "No - Due in March", w.Status())
		assert.Equal(t, "The requested date 2024-07-15 is NOT within the maintenance window. Next due: March.", w.Message())
	})

	t.Run("nothing scheduled", func(t *testing.T) {
		w := EvaluateWindow(nil, date(2024, 7, 15))
		assert.False(t, w.WithinWindow)
		assert.Equal(t, UnknownMonth, w.NextDueMonth)
	})

	t.Run("month names are exact", func(t *testing.T) {
		w := EvaluateWindow([]string{"march"}, date(2024, 3, 1))
		assert.False(t, w.WithinWindow)
	})
}

func TestError_Kinds(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("advance: %w", StoreUnavailable("write conversations", cause))

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, KindStoreUnavailable, KindOf(err))
	assert.Equal(t, "record store unavailable: disk full", MessageOf(err))

	v := Validation("advance", "email", "Missing required fields: email or subject.")
	assert.ErrorIs(t, v, ErrValidation)
	assert.Equal(t, "Missing required fields: email or subject.", MessageOf(v))
	assert.Equal(t, "ValidationError", KindOf(v).String())

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnTransition: func(context.Context, *TransitionEvent) { calls = append(calls, "a") }}
	b := LifecycleHooks{
		OnTransition:  func(context.Context, *TransitionEvent) { calls = append(calls, "b") },
		OnWindowCheck: func(context.Context, *WindowEvent) { calls = append(calls, "w") },
	}

	merged := a.Merge(b)
	merged.OnTransition(context.Background(), &TransitionEvent{})
	merged.OnWindowCheck(context.Background(), &WindowEvent{})

	assert.Equal(t, []string{"a", "b", "w"}, calls)
	assert.Nil(t, merged.OnInductionCheck)
}
