package domain

import "strings"

// Status is the position of a conversation in the scheduling flow.
// The value is the human readable text stored in the conversations table.
type Status string

const (
	StatusSchedulingRequest            Status = "Scheduling Request"
	StatusAwaitingRamsAndEngineerNames Status = "Awaiting RAMS and Engineer Names"
	StatusAwaitingRams                 Status = "Awaiting RAMS"
	StatusAwaitingEngineerNames        Status = "Awaiting Engineer Names"
	StatusConversationComplete         Status = "Conversation Complete" // Sink state
)

var knownStatuses = []Status{
	StatusSchedulingRequest,
	StatusAwaitingRamsAndEngineerNames,
	StatusAwaitingRams,
	StatusAwaitingEngineerNames,
	StatusConversationComplete,
}

var identifiers = map[Status]string{
	StatusSchedulingRequest:            "SchedulingRequest",
	StatusAwaitingRamsAndEngineerNames: "AwaitingRamsAndEngineerNames",
	StatusAwaitingRams:                 "AwaitingRams",
	StatusAwaitingEngineerNames:        "AwaitingEngineerNames",
	StatusConversationComplete:         "ConversationComplete",
}

// Statuses returns the closed set of known statuses in flow order.
func Statuses() []Status {
	out := make([]Status, len(knownStatuses))
	copy(out, knownStatuses)
	return out
}

// ParseStatus maps stored text onto a known Status, ignoring case and
// surrounding whitespace. Both the display text ("Awaiting RAMS") and the
// identifier ("AwaitingRams") are accepted.
// Unrecognised values are returned trimmed but otherwise untouched, so they
// pass through the state machine unchanged.
func ParseStatus(raw string) Status {
	key := NormalizeKey(raw)
	for _, s := range knownStatuses {
		if key == NormalizeKey(string(s)) || key == strings.ToLower(identifiers[s]) {
			return s
		}
	}
	return Status(strings.TrimSpace(raw))
}

// Known reports whether s is one of the five flow states.
func (s Status) Known() bool {
	_, ok := identifiers[s]
	return ok
}

// Terminal reports whether no signal can move the conversation any further.
func (s Status) Terminal() bool {
	return s == StatusConversationComplete
}

// Identifier returns the CamelCase name of a known status, or the raw text.
func (s Status) Identifier() string {
	if id, ok := identifiers[s]; ok {
		return id
	}
	return string(s)
}

func (s Status) String() string {
	return string(s)
}
