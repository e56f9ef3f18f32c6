package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/sitepass/internal/presentation/graph"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/induction"
	"github.com/aretw0/sitepass/pkg/maintenance"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	maintenanceOK      = "Success"
	maintenanceMessage = "Maintenance check completed successfully."

	missingConversationFields = "Missing required fields: email or subject."
	maxBodyBytes              = 1 << 20
)

// CheckConversation handles the POST /check_conversation request.
func (s *Server) CheckConversation(w http.ResponseWriter, r *http.Request) {
	var body ConversationRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.validate.Check("check conversation", body, missingConversationFields); err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.Service.Advance(r.Context(), body.Signals())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ConversationResponse{
		Status:              statusSuccess,
		Message:             out.Message(),
		NewStatus:           string(out.Status),
		NextStepInstruction: out.Instruction,
	})
}

// GetConversation handles the GET /conversation request.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email, subject := strings.TrimSpace(q.Get("email")), strings.TrimSpace(q.Get("subject"))
	for _, p := range []struct{ field, value string }{{"email", email}, {"subject", subject}} {
		if p.value == "" {
			s.fail(w, r, domain.Validation("get conversation", p.field, missingConversationFields))
			return
		}
	}
	rec, err := s.Service.Locate(r.Context(), email, subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationView(*rec))
}

// ListConversations handles the GET /conversations request.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Service.Conversations(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	views := make([]ConversationView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, conversationView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

// CheckInductions handles the POST /check_inductions request.
func (s *Server) CheckInductions(w http.ResponseWriter, r *http.Request) {
	var body InductionRequest
	if !s.decode(w, r, &body) {
		return
	}

	results, err := s.Service.CheckInductions(r.Context(), body.Company, body.Engineers, body.MaintenanceDate)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, InductionResponse{
		Status:  statusSuccess,
		Results: induction.Messages(results),
		Details: results,
	})
}

// CheckMaintenance handles the POST /check_maintenance request.
// An unknown equipment is a business answer, reported inside the result.
func (s *Server) CheckMaintenance(w http.ResponseWriter, r *http.Request) {
	var body MaintenanceRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.validate.Check("check maintenance", body, ""); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.Service.CheckMaintenance(r.Context(), body.EquipmentName, body.CompanyName, body.RequestedDate)
	var check CheckResult
	switch {
	case err == nil:
		check = CheckResult{Status: res.Status(), Message: res.Message()}
	case errors.Is(err, domain.ErrRecordNotFound):
		s.logger.InfoContext(r.Context(), "Maintenance record not found", "equipment", body.EquipmentName, "company", body.CompanyName)
		check = CheckResult{Status: statusError, Message: maintenance.NotFoundMessage(body.EquipmentName, body.CompanyName)}
	default:
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MaintenanceResponse{
		Status:                 maintenanceOK,
		Message:                maintenanceMessage,
		MaintenanceCheckResult: check,
	})
}

// GetStateMachine handles the GET /state_machine request.
func (s *Server) GetStateMachine(w http.ResponseWriter, r *http.Request) {
	edges := s.Service.Transitions()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(graph.GenerateMermaid(edges, graph.Options{}, nil)))
		return
	}
	writeJSON(w, http.StatusOK, edges)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.WarnContext(r.Context(), "Invalid request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Status: statusError, Message: "Invalid request body."})
		return false
	}
	return true
}

// fail maps a domain error kind to a status code and writes the error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	level := slog.LevelError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrDateParse):
		code, level = http.StatusBadRequest, slog.LevelWarn
	case errors.Is(err, domain.ErrRecordNotFound):
		code, level = http.StatusNotFound, slog.LevelInfo
	case errors.Is(err, domain.ErrStoreUnavailable):
		code = http.StatusServiceUnavailable
	}
	s.logger.Log(r.Context(), level, "Request failed", "path", r.URL.Path, "status", code, "error", err)

	resp := ErrorResponse{Status: statusError, Message: domain.MessageOf(err)}
	var de *domain.Error
	if errors.As(err, &de) {
		resp.Field = de.Field
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
