// Package http exposes the sitepass service as a JSON API.
package http

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/sitepass"
	"github.com/aretw0/sitepass/internal/logging"
	"github.com/aretw0/sitepass/internal/validator"
	"github.com/aretw0/sitepass/pkg/conversation"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Service is the part of sitepass.Service the API calls.
type Service interface {
	Advance(ctx context.Context, sig domain.Signals) (conversation.Outcome, error)
	Locate(ctx context.Context, email, subject string) (*domain.ConversationRecord, error)
	Conversations(ctx context.Context) ([]domain.ConversationRecord, error)
	CheckInductions(ctx context.Context, company string, engineers []string, maintenanceDate string) ([]domain.InductionResult, error)
	CheckMaintenance(ctx context.Context, equipment, company, requestedDate string) (domain.WindowResult, error)
	Transitions() []domain.Transition
}

var _ Service = (*sitepass.Service)(nil)

// Server holds the handlers of the API.
type Server struct {
	Service  Service
	Streams  *StreamManager
	validate *validator.Validator
	logger   *slog.Logger

	apiVersion  string
	corsOrigins []string
	rateLimit   float64
	rateBurst   int
	limiter     *IPRateLimiter
	gatherer    prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams publishes events from a StreamManager on GET /events.
// Register the manager's Hooks on the service to feed it.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithCORSOrigins sets the allowed origins. Default is "*".
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithRateLimit limits requests per client IP. A zero limit disables it.
func WithRateLimit(limit float64, burst int) Option {
	return func(s *Server) {
		s.rateLimit = limit
		s.rateBurst = burst
	}
}

// WithGatherer selects the registry served on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for svc. The embedded OpenAPI
// document is validated first.
func NewHandler(svc Service, opts ...Option) (http.Handler, error) {
	doc, err := loadSpec()
	if err != nil {
		return nil, err
	}

	server := &Server{
		Service:     svc,
		validate:    validator.New(),
		logger:      logging.NewNop(),
		apiVersion:  doc.Info.Version,
		corsOrigins: []string{"*"},
		gatherer:    prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.rateLimit > 0 {
		server.limiter = NewIPRateLimiter(rate.Limit(server.rateLimit), server.rateBurst, server.logger)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(server.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: server.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/events", server.SubscribeEvents)

	r.Group(func(r chi.Router) {
		if server.limiter != nil {
			r.Use(server.limiter.Handler)
		}
		r.Post("/check_conversation", server.CheckConversation)
		r.Post("/check_inductions", server.CheckInductions)
		r.Post("/check_maintenance", server.CheckMaintenance)
		r.Get("/conversation", server.GetConversation)
		r.Get("/conversations", server.ListConversations)
		r.Get("/state_machine", server.GetStateMachine)
	})

	return r, nil
}

func loadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "sitepass-http",
		"version":     strings.TrimSpace(sitepass.Version),
		"api_version": s.apiVersion,
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>sitepass API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
