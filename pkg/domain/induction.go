package domain

import (
	"fmt"
	"time"
)

// InductionRecord is one engineer's safety induction at a company's site.
// Expiry is kept as stored so that unreadable cells can be reported.
type InductionRecord struct {
	Company string
	Name    string
	Expiry  string
}

// Matches reports whether the record belongs to (company, name).
func (r InductionRecord) Matches(company, name string) bool {
	return SameKey(r.Company, company) && SameKey(r.Name, name)
}

// Classification is the outcome of an induction check for one engineer.
type Classification string

const (
	Inducted          Classification = "Inducted"
	Expired           Classification = "Expired"
	RequiresInduction Classification = "RequiresInduction"
	Unparsable        Classification = "Unparsable"
)

// Classify compares an expiry date with the maintenance date. An induction
// expiring on the maintenance day itself still counts.
func Classify(expiry, maintenance time.Time) Classification {
	if !DateOf(expiry).Before(DateOf(maintenance)) {
		return Inducted
	}
	return Expired
}

// InductionResult is the per-engineer line of an induction check.
type InductionResult struct {
	Engineer       string         `json:"engineer"`
	Classification Classification `json:"classification"`
	Expiry         *time.Time     `json:"expiry,omitempty"`
}

// Message renders the result as the sentence shown to the operator.
func (r InductionResult) Message() string {
	switch r.Classification {
	case Inducted:
		return fmt.Sprintf("%s is inducted for the scheduled date.", r.Engineer)
	case Expired:
		return fmt.Sprintf("%s's induction expires before the scheduled date and needs to be redone.", r.Engineer)
	case RequiresInduction:
		return fmt.Sprintf("%s requires an induction.", r.Engineer)
	default:
		return fmt.Sprintf("Could not parse expiry date for %s.", r.Engineer)
	}
}
