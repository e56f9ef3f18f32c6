package domain

// Evidence is what an inbound message contributed: a RAMS attachment and/or
// the names of the attending engineers.
type Evidence struct {
	Attachment bool `json:"attachment"`
	Engineers  bool `json:"engineers"`
}

// Label is a short description used in diagrams and logs.
func (e Evidence) Label() string {
	switch {
	case e.Attachment && e.Engineers:
		return "RAMS + engineers"
	case e.Attachment:
		return "RAMS only"
	case e.Engineers:
		return "engineers only"
	default:
		return "no evidence"
	}
}

// AllEvidence enumerates the four signal combinations.
func AllEvidence() []Evidence {
	return []Evidence{
		{Attachment: false, Engineers: false},
		{Attachment: true, Engineers: false},
		{Attachment: false, Engineers: true},
		{Attachment: true, Engineers: true},
	}
}

// Next computes the status that follows current given the evidence of one
// inbound message. Status comparison is case-insensitive; unrecognised
// statuses are returned unchanged.
func Next(current Status, ev Evidence) Status {
	switch ParseStatus(string(current)) {
	case StatusSchedulingRequest:
		return StatusAwaitingRamsAndEngineerNames
	case StatusAwaitingRamsAndEngineerNames:
		switch {
		case ev.Attachment && ev.Engineers:
			return StatusConversationComplete
		case ev.Attachment:
			return StatusAwaitingEngineerNames
		case ev.Engineers:
			return StatusAwaitingRams
		}
	case StatusAwaitingRams:
		if ev.Attachment {
			return StatusConversationComplete
		}
	case StatusAwaitingEngineerNames:
		if ev.Engineers {
			return StatusConversationComplete
		}
	case StatusConversationComplete:
		return StatusConversationComplete
	}
	return current
}

// Initial is the status of a conversation seen for the first time.
func Initial(ev Evidence) Status {
	switch {
	case ev.Attachment && ev.Engineers:
		return StatusConversationComplete
	case ev.Attachment:
		return StatusAwaitingEngineerNames
	case ev.Engineers:
		return StatusAwaitingRams
	default:
		return StatusSchedulingRequest
	}
}

// Transition is one edge of the conversation state machine.
// An empty From marks the initial-status rule for a new conversation.
type Transition struct {
	From     Status   `json:"from,omitempty"`
	To       Status   `json:"to"`
	Evidence Evidence `json:"evidence"`
}

// Transitions enumerates every edge of the machine, initial edges first.
func Transitions() []Transition {
	var out []Transition
	for _, ev := range AllEvidence() {
		out = append(out, Transition{To: Initial(ev), Evidence: ev})
	}
	for _, s := range knownStatuses {
		for _, ev := range AllEvidence() {
			out = append(out, Transition{From: s, To: Next(s, ev), Evidence: ev})
		}
	}
	return out
}
