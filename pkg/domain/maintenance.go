package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// UnknownMonth is reported as next due when no inspection month is scheduled.
const UnknownMonth = "Unknown"

// SlotCount is the number of quarterly inspection slots per record.
const SlotCount = 4

// MaintenanceRecord holds the pre-approved inspection months of one piece
// of equipment at one company. Each slot is empty or a month name.
type MaintenanceRecord struct {
	Equipment string
	Company   string
	Slots     [SlotCount]string
}

// Matches reports whether the record is (equipment, company).
func (r MaintenanceRecord) Matches(equipment, company string) bool {
	return SameKey(r.Equipment, equipment) && SameKey(r.Company, company)
}

// ScheduledMonths lists the non-empty slots in Q1..Q4 order. Duplicates are kept.
func (r MaintenanceRecord) ScheduledMonths() []string {
	months := make([]string, 0, SlotCount)
	for _, slot := range r.Slots {
		if m := strings.TrimSpace(slot); m != "" {
			months = append(months, m)
		}
	}
	return months
}

// WindowResult is the outcome of a maintenance window check.
//
// NextDueMonth is the first scheduled slot, not the month nearest to the
// requested date; treat it as the earliest configured slot only.
type WindowResult struct {
	RequestedDate   time.Time `json:"requested_date"`
	WithinWindow    bool      `json:"within_window"`
	NextDueMonth    string    `json:"next_due_month,omitempty"`
	ScheduledMonths []string  `json:"scheduled_months"`
}

// EvaluateWindow decides whether requested falls in one of the scheduled
// months. Month names are compared exactly, as English month names.
func EvaluateWindow(scheduled []string, requested time.Time) WindowResult {
	res := WindowResult{
		RequestedDate:   requested,
		ScheduledMonths: scheduled,
	}
	if slices.Contains(scheduled, requested.Month().String()) {
		res.WithinWindow = true
		return res
	}
	res.NextDueMonth = UnknownMonth
	if len(scheduled) > 0 {
		res.NextDueMonth = scheduled[0]
	}
	return res
}

// Status renders the short answer: "Yes" or "No - Due in <month>".
func (w WindowResult) Status() string {
	if w.WithinWindow {
		return "Yes"
	}
	return "No - Due in " + w.NextDueMonth
}

// Message renders the sentence shown to the operator.
func (w WindowResult) Message() string {
	date := w.RequestedDate.Format(DateLayout)
	if w.WithinWindow {
		return fmt.Sprintf("The requested date %s is within the maintenance window.", date)
	}
	return fmt.Sprintf("The requested date %s is NOT within the maintenance window. Next due: %s.", date, w.NextDueMonth)
}
