package domain

import (
	"strconv"
	"strings"
	"time"
)

// NormalizeKey is the single normalization applied to both sides of every
// natural-key comparison: surrounding whitespace trimmed, then lower-cased.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameKey compares two natural-key fragments after normalization.
func SameKey(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}

// Date layouts used across the tables and the service boundary.
const (
	// DateLayout is used for Last Updated and the induction maintenance date.
	DateLayout = "2006-01-02"
	// RequestedDateLayout is the DD/MM/YY layout of maintenance requests.
	// Single-digit days and months are accepted when parsing.
	RequestedDateLayout = "2/1/06"
)

// expiryLayouts are tried in order when reading an induction expiry cell.
var expiryLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2 January 2006",
}

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// DateOf strips the clock from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseExpiry reads an induction expiry cell into a calendar date.
func ParseExpiry(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, DateParse("parse expiry", "expiry", raw, errEmptyDate)
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial < 2958466 {
		// Spreadsheet serial day number (days since 1899-12-30).
		return excelEpoch.AddDate(0, 0, int(serial)), nil
	}
	var lastErr error
	for _, layout := range expiryLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return DateOf(t), nil
		}
		lastErr = err
	}
	return time.Time{}, DateParse("parse expiry", "expiry", raw, lastErr)
}

// ParseDate parses a YYYY-MM-DD value for the named request field.
func ParseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, DateParse("parse date", field, raw, err)
	}
	return t, nil
}

// ParseRequestedDate parses the DD/MM/YY requested_date of a maintenance check.
func ParseRequestedDate(raw string) (time.Time, error) {
	t, err := time.Parse(RequestedDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, DateParse("parse requested date", "requested_date", raw, err)
	}
	return t, nil
}
