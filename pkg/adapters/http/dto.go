package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/sitepass/pkg/domain"
)

// flexString accepts a JSON string, bool, number or null and keeps its text.
// Clients send the attachment flag both as "Yes" and as true.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case bytes.Equal(data, []byte("true")):
		*f = "Yes"
	case bytes.Equal(data, []byte("false")):
		*f = "No"
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected a string, got %s", data)
		}
		*f = flexString(n.String())
	}
	return nil
}

// nameList accepts a JSON array of names or one comma separated string.
// Both forms are trimmed and drop empty names.
type nameList []string

func (l *nameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return err
		}
		*l = domain.ParseEngineerNames(strings.Join(names, ","))
		return nil
	}
	var raw flexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	*l = domain.ParseEngineerNames(string(raw))
	return nil
}

// ConversationRequest is the body of POST /check_conversation.
type ConversationRequest struct {
	Email         string     `json:"email" validate:"required"`
	EmailSubject  string     `json:"email_subject" validate:"required"`
	Attachment    flexString `json:"attachment"`
	EngineerNames nameList   `json:"engineer_names"`
}

// Signals converts the request into domain signals.
func (r ConversationRequest) Signals() domain.Signals {
	return domain.Signals{
		Email:             strings.TrimSpace(r.Email),
		Subject:           strings.TrimSpace(r.EmailSubject),
		AttachmentPresent: domain.ParseAttachmentFlag(string(r.Attachment)),
		EngineerNames:     r.EngineerNames,
	}
}

// ConversationResponse is the result of POST /check_conversation.
type ConversationResponse struct {
	Status              string `json:"status"`
	Message             string `json:"message"`
	NewStatus           string `json:"new_status"`
	NextStepInstruction string `json:"next_step_instruction"`
}

// ConversationView is one tracked conversation.
type ConversationView struct {
	Email               string `json:"email"`
	SenderDomain        string `json:"sender_domain"`
	CompanyName         string `json:"company_name"`
	Subject             string `json:"subject"`
	Status              string `json:"status"`
	LastUpdated         string `json:"last_updated,omitempty"`
	Label               string `json:"label"`
	NextStepInstruction string `json:"next_step_instruction"`
}

func conversationView(rec domain.ConversationRecord) ConversationView {
	v := ConversationView{
		Email:               rec.Email,
		SenderDomain:        rec.SenderDomain,
		CompanyName:         rec.CompanyName,
		Subject:             rec.Subject,
		Status:              string(rec.Status),
		Label:               rec.Label,
		NextStepInstruction: rec.Instruction(),
	}
	if !rec.LastUpdated.IsZero() {
		v.LastUpdated = rec.LastUpdated.Format(domain.DateLayout)
	}
	return v
}

// InductionRequest is the body of POST /check_inductions.
type InductionRequest struct {
	Company         string   `json:"company"`
	Engineers       nameList `json:"engineers"`
	MaintenanceDate string   `json:"maintenance_date"`
}

// InductionResponse is the result of POST /check_inductions.
type InductionResponse struct {
	Status  string                   `json:"status"`
	Results []string                 `json:"results"`
	Details []domain.InductionResult `json:"details"`
}

// MaintenanceRequest is the body of POST /check_maintenance.
type MaintenanceRequest struct {
	EquipmentName string `json:"equipment_name" validate:"required"`
	RequestedDate string `json:"requested_date" validate:"required"`
	CompanyName   string `json:"company_name" validate:"required"`
}

// CheckResult is the status/message pair of a maintenance check.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MaintenanceResponse is the result of POST /check_maintenance.
type MaintenanceResponse struct {
	Status                 string      `json:"status"`
	Message                string      `json:"message"`
	MaintenanceCheckResult CheckResult `json:"maintenance_check_result"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// EventMessage is one item of the GET /events stream.
type EventMessage struct {
	Type      domain.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Data      any              `json:"data"`
}
