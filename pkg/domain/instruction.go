package domain

// DefaultInstruction is surfaced for any status outside the known flow.
const DefaultInstruction = "Continue monitoring this conversation."

var instructions = map[Status]string{
	StatusSchedulingRequest:            "Please ask the contractor to provide a proposed maintenance date.",
	StatusAwaitingRamsAndEngineerNames: "Please ask the contractor to provide RAMS and the names of the attending engineers.",
	StatusAwaitingEngineerNames:        "Please ask for the names of the attending engineers.",
	StatusAwaitingRams:                 "Please ask for RAMS.",
	StatusConversationComplete:         "All information has been received. Confirm attendance and say thank you.",
}

// InstructionFor returns the next step an operator should take for a
// conversation in the given status. It depends on the status alone.
func InstructionFor(s Status) string {
	if text, ok := instructions[ParseStatus(string(s))]; ok {
		return text
	}
	return DefaultInstruction
}
