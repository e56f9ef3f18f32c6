package domain

import (
	"strings"
	"time"
)

// UnknownDomain is recorded when the sender address carries no '@'.
const UnknownDomain = "unknown"

// ConversationRecord is one tracked email exchange with a contractor,
// identified by (Email, Subject) after normalization.
//
// SenderDomain, CompanyName and Label are cached derived data kept in the
// table for ancillary lookups; Email and Subject are the source of truth.
type ConversationRecord struct {
	Email        string
	SenderDomain string
	CompanyName  string
	Subject      string
	Status       Status
	LastUpdated  time.Time
	Label        string
}

// NewConversation builds a record for a first inbound message, deriving the
// cached fields from email and subject.
func NewConversation(email, subject string, status Status, now time.Time) ConversationRecord {
	domain := SenderDomain(email)
	return ConversationRecord{
		Email:        email,
		SenderDomain: domain,
		CompanyName:  CompanyName(domain),
		Subject:      subject,
		Status:       status,
		LastUpdated:  DateOf(now),
		Label:        CompositeLabel(domain, subject),
	}
}

// Matches reports whether the record is the conversation (email, subject).
func (c ConversationRecord) Matches(email, subject string) bool {
	return SameKey(c.Email, email) && SameKey(c.Subject, subject)
}

// Instruction is the operator instruction for the record's current status.
func (c ConversationRecord) Instruction() string {
	return InstructionFor(c.Status)
}

// SenderDomain returns the part of email after '@', or UnknownDomain.
func SenderDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return UnknownDomain
	}
	return parts[1]
}

// CompanyName returns the domain up to its first '.', or the whole domain.
func CompanyName(domain string) string {
	if i := strings.Index(domain, "."); i >= 0 {
		return domain[:i]
	}
	return domain
}

// CompositeLabel joins domain and subject for ancillary lookups.
func CompositeLabel(domain, subject string) string {
	return domain + " " + subject
}
