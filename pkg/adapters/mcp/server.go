// Package mcp exposes the sitepass checks as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sitepass"
	"github.com/aretw0/sitepass/internal/logging"
	"github.com/aretw0/sitepass/internal/presentation/graph"
	"github.com/aretw0/sitepass/pkg/conversation"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/induction"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const stateMachineURI = "sitepass://state-machine"

// Service is the part of sitepass.Service the tools call.
type Service interface {
	Advance(ctx context.Context, sig domain.Signals) (conversation.Outcome, error)
	CheckInductions(ctx context.Context, company string, engineers []string, maintenanceDate string) ([]domain.InductionResult, error)
	CheckMaintenance(ctx context.Context, equipment, company, requestedDate string) (domain.WindowResult, error)
	Transitions() []domain.Transition
}

// AdvanceArgs are the arguments of advance_conversation.
type AdvanceArgs struct {
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	Attachment    bool   `json:"attachment"`
	EngineerNames string `json:"engineer_names"`
}

// AdvanceResponse is the result of advance_conversation.
type AdvanceResponse struct {
	Message     string `json:"message" jsonschema_description:"What happened to the conversation"`
	NewStatus   string `json:"new_status" jsonschema_description:"Status after applying the email"`
	Instruction string `json:"next_step_instruction" jsonschema_description:"What the operator should do next"`
	Created     bool   `json:"created" jsonschema_description:"True when the conversation was seen for the first time"`
}

// InductionArgs are the arguments of check_inductions.
type InductionArgs struct {
	Company         string   `json:"company"`
	Engineers       []string `json:"engineers"`
	MaintenanceDate string   `json:"maintenance_date"`
}

// InductionResponse is the result of check_inductions.
type InductionResponse struct {
	Results []string                 `json:"results" jsonschema_description:"One sentence per engineer"`
	Details []domain.InductionResult `json:"details" jsonschema_description:"Classification per engineer"`
}

// MaintenanceArgs are the arguments of check_maintenance.
type MaintenanceArgs struct {
	EquipmentName string `json:"equipment_name"`
	CompanyName   string `json:"company_name"`
	RequestedDate string `json:"requested_date"`
}

// MaintenanceResponse is the result of check_maintenance.
type MaintenanceResponse struct {
	Found           bool     `json:"found" jsonschema_description:"False when no schedule exists for the equipment"`
	Status          string   `json:"status" jsonschema_description:"Yes, No - Due in <month>, or error"`
	Message         string   `json:"message"`
	ScheduledMonths []string `json:"scheduled_months,omitempty"`
}

// Server wraps the sitepass Service and exposes it as an MCP Server.
type Server struct {
	svc       Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("sitepass-mcp", strings.TrimSpace(sitepass.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
	})

	mux := http.NewServeMux()
	mux.Handle("/sse", corsHandler(sseServer.SSEHandler()))
	mux.Handle("/message", corsHandler(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: advance_conversation
	advanceTool := mcp.NewTool("advance_conversation",
		mcp.WithDescription("Apply one inbound contractor email to its scheduling conversation and get the next operator instruction."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Sender email address")),
		mcp.WithString("subject", mcp.Required(), mcp.Description("Email subject, identifies the conversation together with the sender")),
		mcp.WithBoolean("attachment", mcp.Description("True when a RAMS document is attached")),
		mcp.WithString("engineer_names", mcp.Description("Comma separated names of the attending engineers")),
		mcp.WithOutputSchema[AdvanceResponse](),
	)
	s.mcpServer.AddTool(advanceTool, mcp.NewStructuredToolHandler(s.handleAdvance))

	// TOOL: check_inductions
	inductionTool := mcp.NewTool("check_inductions",
		mcp.WithDescription("Check whether engineers hold a site induction valid on the maintenance date."),
		mcp.WithString("company", mcp.Required(), mcp.Description("Company whose site is visited")),
		mcp.WithArray("engineers", mcp.Required(), mcp.Description("Engineer names"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("maintenance_date", mcp.Required(), mcp.Description("Visit date, YYYY-MM-DD")),
		mcp.WithOutputSchema[InductionResponse](),
	)
	s.mcpServer.AddTool(inductionTool, mcp.NewStructuredToolHandler(s.handleInductions))

	// TOOL: check_maintenance
	maintenanceTool := mcp.NewTool("check_maintenance",
		mcp.WithDescription("Check whether a requested date falls in a pre-approved maintenance month."),
		mcp.WithString("equipment_name", mcp.Required(), mcp.Description("Maintenance subject, e.g. Boiler")),
		mcp.WithString("company_name", mcp.Required(), mcp.Description("Company owning the equipment")),
		mcp.WithString("requested_date", mcp.Required(), mcp.Description("Requested date, DD/MM/YY")),
		mcp.WithOutputSchema[MaintenanceResponse](),
	)
	s.mcpServer.AddTool(maintenanceTool, mcp.NewStructuredToolHandler(s.handleMaintenance))

	// TOOL: get_state_machine
	s.mcpServer.AddTool(mcp.NewTool("get_state_machine",
		mcp.WithDescription("Get every transition of the conversation state machine."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.svc.Transitions())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args AdvanceArgs) (AdvanceResponse, error) {
	out, err := s.svc.Advance(ctx, domain.Signals{
		Email:             strings.TrimSpace(args.Email),
		Subject:           strings.TrimSpace(args.Subject),
		AttachmentPresent: args.Attachment,
		EngineerNames:     domain.ParseEngineerNames(args.EngineerNames),
	})
	if err != nil {
		s.logger.Warn("MCP advance_conversation failed", "error", err)
		return AdvanceResponse{}, errors.New(domain.MessageOf(err))
	}
	return AdvanceResponse{
		Message:     out.Message(),
		NewStatus:   string(out.Status),
		Instruction: out.Instruction,
		Created:     out.Created,
	}, nil
}

func (s *Server) handleInductions(ctx context.Context, request mcp.CallToolRequest, args InductionArgs) (InductionResponse, error) {
	results, err := s.svc.CheckInductions(ctx, args.Company, args.Engineers, args.MaintenanceDate)
	if err != nil {
		s.logger.Warn("MCP check_inductions failed", "error", err)
		return InductionResponse{}, errors.New(domain.MessageOf(err))
	}
	return InductionResponse{Results: induction.Messages(results), Details: results}, nil
}

func (s *Server) handleMaintenance(ctx context.Context, request mcp.CallToolRequest, args MaintenanceArgs) (MaintenanceResponse, error) {
	res, err := s.svc.CheckMaintenance(ctx, args.EquipmentName, args.CompanyName, args.RequestedDate)
	switch {
	case err == nil:
		return MaintenanceResponse{
			Found:           true,
			Status:          res.Status(),
			Message:         res.Message(),
			ScheduledMonths: res.ScheduledMonths,
		}, nil
	case errors.Is(err, domain.ErrRecordNotFound):
		return MaintenanceResponse{Status: "error", Message: domain.MessageOf(err)}, nil
	default:
		s.logger.Warn("MCP check_maintenance failed", "error", err)
		return MaintenanceResponse{}, errors.New(domain.MessageOf(err))
	}
}

func (s *Server) registerResources() {
	// EXPOSE: sitepass://state-machine
	s.mcpServer.AddResource(mcp.NewResource(stateMachineURI, "Conversation State Machine",
		mcp.WithResourceDescription("Mermaid flowchart of the conversation statuses"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      stateMachineURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.svc.Transitions(), graph.Options{}, nil),
			},
		}, nil
	})
}
