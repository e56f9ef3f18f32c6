package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/sitepass"
	"github.com/aretw0/sitepass/internal/testutils"
	"github.com/aretw0/sitepass/pkg/adapters/memory"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, store ports.TableStore, opts ...Option) (http.Handler, *StreamManager) {
	t.Helper()
	streams := NewStreamManager(nil)
	svc := sitepass.New(store, sitepass.WithLifecycleHooks(streams.Hooks()))
	opts = append([]Option{WithStreams(streams), WithGatherer(prometheus.NewRegistry())}, opts...)
	h, err := NewHandler(svc, opts...)
	require.NoError(t, err)
	return h, streams
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") && w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestCheckConversation_Flow(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore())

	w, out := do(t, h, "POST", "/check_conversation", map[string]any{
		"email": "ops@acme.com", "email_subject": "Boiler service",
		"attachment": "No", "engineer_names": "none",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "New conversation created.", out["message"])
	assert.Equal(t, "Scheduling Request", out["new_status"])
	assert.Equal(t, "Please ask the contractor to provide a proposed maintenance date.", out["next_step_instruction"])

	_, out = do(t, h, "POST", "/check_conversation", map[string]any{
		"email": " OPS@acme.com ", "email_subject": "boiler service",
	})
	assert.Equal(t, "Conversation updated to Awaiting RAMS and Engineer Names.", out["message"])

	_, out = do(t, h, "POST", "/check_conversation", map[string]any{
		"email": "ops@acme.com", "email_subject": "Boiler service",
		"attachment": true, "engineer_names": "Alice, Bob",
	})
	assert.Equal(t, "Conversation Complete", out["new_status"])
	assert.Equal(t, "All information has been received. Confirm attendance and say thank you.", out["next_step_instruction"])

	w, out = do(t, h, "GET", "/conversation?email=ops@acme.com&subject=Boiler%20service", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme", out["company_name"])
	assert.Equal(t, "Conversation Complete", out["status"])

	w, _ = do(t, h, "GET", "/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []ConversationView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCheckConversation_EngineerNamesArray(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore())

	w, out := do(t, h, "POST", "/check_conversation", map[string]any{
		"email": "ops@acme.com", "email_subject": "Chiller service",
		"attachment": "Yes", "engineer_names": []string{"Alice", " ", "Bob"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Conversation Complete", out["new_status"])

	w, out = do(t, h, "POST", "/check_conversation", map[string]any{
		"email": "ops@acme.com", "email_subject": "Pump service",
		"engineer_names": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Scheduling Request", out["new_status"])
}

func TestConversationRequest_Signals(t *testing.T) {
	var req ConversationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"email":" a@b.com ","email_subject":"S","attachment":true,"engineer_names":["Alice"," Bob "]}`), &req))
	sig := req.Signals()
	assert.Equal(t, "a@b.com", sig.Email)
	assert.True(t, sig.AttachmentPresent)
	assert.Equal(t, []string{"Alice", "Bob"}, sig.EngineerNames)

	require.NoError(t, json.Unmarshal([]byte(`{"engineer_names":"none"}`), &req))
	assert.Empty(t, req.Signals().EngineerNames)
}

func TestCheckConversation_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore())

	for _, body := range []map[string]any{
		{"email": "ops@acme.com"},
		{"email_subject": "Boiler"},
		{"email": "  ", "email_subject": "Boiler"},
	} {
		w, out := do(t, h, "POST", "/check_conversation", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "error", out["status"])
		assert.Equal(t, "Missing required fields: email or subject.", out["message"])
	}

	w, out := do(t, h, "POST", "/check_conversation", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body.", out["message"])
}

func TestGetConversation_NotFound(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore())
	w, out := do(t, h, "GET", "/conversation?email=x@y.com&subject=none", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", out["status"])
}

func TestGetConversation_MissingQuery(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore())

	tests := []struct {
		query string
		field string
	}{
		{"", "email"},
		{"?subject=Boiler", "email"},
		{"?email=x@y.com", "subject"},
		{"?email=x@y.com&subject=%20", "subject"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, out := do(t, h, "GET", "/conversation"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Missing required fields: email or subject.", out["message"])
			assert.Equal(t, tt.field, out["field"])
		})
	}
}

func TestCheckInductions(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStoreWith(testutils.Tables()))

	w, out := do(t, h, "POST", "/check_inductions", map[string]any{
		"company":          " ACME ",
		"engineers":        []string{"Alice", "Bob", "Carol", "Dan"},
		"maintenance_date": "2024-06-01",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, []any{
		"Alice is inducted for the scheduled date.",
		"Bob's induction expires before the scheduled date and needs to be redone.",
		"Carol requires an induction.",
		"Could not parse expiry date for Dan.",
	}, out["results"])
}

func TestCheckInductions_CommaSeparatedEngineers(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStoreWith(testutils.Tables()))

	_, out := do(t, h, "POST", "/check_inductions", map[string]any{
		"company": "Acme", "engineers": "Alice, Carol", "maintenance_date": "2024-05-01",
	})
	assert.Len(t, out["results"], 2)
}

func TestCheckInductions_DateErrors(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStoreWith(testutils.Tables()))

	w, out := do(t, h, "POST", "/check_inductions", map[string]any{"company": "Acme", "engineers": []string{"Alice"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing maintenance date.", out["message"])
	assert.Equal(t, "maintenance_date", out["field"])

	w, out = do(t, h, "POST", "/check_inductions", map[string]any{
		"company": "Acme", "engineers": []string{"Alice"}, "maintenance_date": "01/06/2024",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "maintenance_date", out["field"])
}

func TestCheckMaintenance(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStoreWith(testutils.Tables()))

	t.Run("within window", func(t *testing.T) {
		w, out := do(t, h, "POST", "/check_maintenance", map[string]any{
			"equipment_name": "boiler", "company_name": "acme", "requested_date": "15/03/24",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Success", out["status"])
		assert.Equal(t, "Maintenance check completed successfully.", out["message"])
		assert.Equal(t, map[string]any{
			"status":  "Yes",
			"message": "The requested date 2024-03-15 is within the maintenance window.",
		}, out["maintenance_check_result"])
	})

	t.Run("outside window", func(t *testing.T) {
		_, out := do(t, h, "POST", "/check_maintenance", map[string]any{
			"equipment_name": "Boiler", "company_name": "Acme", "requested_date": "15/07/24",
		})
		result := out["maintenance_check_result"].(map[string]any)
		assert.Equal(t, "No - Due in March", result["status"])
	})

	t.Run("unknown equipment", func(t *testing.T) {
		w, out := do(t, h, "POST", "/check_maintenance", map[string]any{
			"equipment_name": " Lift ", "company_name": "Acme", "requested_date": "15/07/24",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Success", out["status"])
		assert.Equal(t, map[string]any{
			"status":  "error",
			"message": "No maintenance record found for 'lift' under 'acme'.",
		}, out["maintenance_check_result"])
	})

	t.Run("bad date", func(t *testing.T) {
		w, out := do(t, h, "POST", "/check_maintenance", map[string]any{
			"equipment_name": "Boiler", "company_name": "Acme", "requested_date": "2024-03-15",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "requested_date", out["field"])
	})

	t.Run("missing field", func(t *testing.T) {
		w, out := do(t, h, "POST", "/check_maintenance", map[string]any{
			"equipment_name": "Boiler", "requested_date": "15/03/24",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "company_name", out["field"])
		assert.Equal(t, "Missing required field: company_name.", out["message"])
	})
}

type brokenStore struct{}

func (brokenStore) ReadTable(context.Context, ports.Table) ([]ports.Row, error) {
	return nil, errors.New("disk on fire")
}

func (brokenStore) WriteTable(context.Context, ports.Table, []ports.Row) error {
	return errors.New("disk on fire")
}

func TestStoreUnavailable(t *testing.T) {
	h, _ := newTestHandler(t, brokenStore{})

	w, out := do(t, h, "POST", "/check_conversation", map[string]any{"email": "a@b.com", "email_subject": "s"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error", out["status"])
	assert.Contains(t, out["message"], "record store unavailable")

	w, _ = do(t, h, "POST", "/check_maintenance", map[string]any{
		"equipment_name": "Boiler", "company_name": "Acme", "requested_date": "15/03/24",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetaEndpoints(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore())

	w, out := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])

	_, out = do(t, h, "GET", "/info", nil)
	assert.Equal(t, "sitepass-http", out["app"])
	assert.Equal(t, "1.0.0", out["api_version"])
	assert.Equal(t, strings.TrimSpace(sitepass.Version), out["version"])

	w, _ = do(t, h, "GET", "/openapi.yaml", nil)
	assert.Contains(t, w.Body.String(), "/check_conversation")

	w, _ = do(t, h, "GET", "/swagger", nil)
	assert.Contains(t, w.Body.String(), "swagger-ui")

	w, _ = do(t, h, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStateMachine(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore())

	w, _ := do(t, h, "GET", "/state_machine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var edges []domain.Transition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edges))
	assert.Equal(t, domain.Transitions(), edges)

	w, _ = do(t, h, "GET", "/state_machine?format=mermaid", nil)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore(), WithRateLimit(1, 1))

	w, _ := do(t, h, "GET", "/state_machine", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, out := do(t, h, "GET", "/state_machine", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limit exceeded", out["message"])

	// Health checks are never limited.
	w, _ = do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1, nil)
	l.now = func() time.Time { return now }

	first := l.getLimiter("10.0.0.1")
	assert.False(t, first.Allow() && first.Allow(), "burst of one")
	l.getLimiter("10.0.0.2")
	assert.Equal(t, 2, l.Len())

	now = now.Add(limiterIdleTTL / 2)
	l.getLimiter("10.0.0.2")
	assert.Equal(t, 2, l.Len(), "no sweep before the TTL elapses")

	now = now.Add(limiterIdleTTL)
	l.getLimiter("10.0.0.3")
	assert.Equal(t, 2, l.Len(), "10.0.0.1 swept, 10.0.0.2 still recent")

	assert.NotSame(t, first, l.getLimiter("10.0.0.1"), "evicted client starts fresh")
	assert.Equal(t, 3, l.Evict(now.Add(2*limiterIdleTTL)))
}

func TestCORS(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewStore(), WithCORSOrigins([]string{"https://ops.example.com"}))

	req := httptest.NewRequest("OPTIONS", "/check_conversation", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://ops.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	h, streams := newTestHandler(t, memory.NewStore())
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?type=conversation_transition", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	post, err := http.Post(srv.URL+"/check_conversation", "application/json",
		strings.NewReader(`{"email":"ops@acme.com","email_subject":"Boiler","attachment":"Yes"}`))
	require.NoError(t, err)
	post.Body.Close()

	var data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			break
		}
	}

	var msg struct {
		Type domain.EventType       `json:"type"`
		Data domain.TransitionEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &msg))
	assert.Equal(t, domain.EventTransition, msg.Type)
	assert.Equal(t, domain.StatusAwaitingEngineerNames, msg.Data.To)
	assert.True(t, msg.Data.Created)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe()
	defer cancel()

	for i := 0; i < 32; i++ {
		sm.Broadcast(EventMessage{Type: domain.EventWindowCheck})
	}
	assert.Len(t, ch, cap(ch))
}
