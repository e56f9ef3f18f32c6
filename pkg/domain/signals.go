package domain

import "strings"

// Signals are the facts extracted from one inbound message.
type Signals struct {
	Email             string
	Subject           string
	AttachmentPresent bool
	EngineerNames     []string
}

// Evidence reduces the signals to the two booleans the machine consumes.
func (s Signals) Evidence() Evidence {
	return Evidence{
		Attachment: s.AttachmentPresent,
		Engineers:  len(s.EngineerNames) > 0,
	}
}

var emptyNameMarkers = map[string]bool{"": true, "none": true, "null": true}

// ParseEngineerNames splits a comma separated list of names. The markers
// "", "none" and "null" (any case) mean no names were given.
func ParseEngineerNames(raw string) []string {
	raw = strings.TrimSpace(raw)
	if emptyNameMarkers[strings.ToLower(raw)] {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseAttachmentFlag reads the attachment field: "Yes" in any case is true.
func ParseAttachmentFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "yes")
}
