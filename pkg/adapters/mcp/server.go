// Package mcp exposes the open service to agents over the Model Context
// Protocol: tools to open and check resources, and a status resource for
// introspection.
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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/usher"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
	"github.com/aretw0/usher/pkg/schema"
)

// OpenResponse aligns with the OpenAPI schema and provides a unified
// structure across adapters.
type OpenResponse struct {
	Outcome domain.Outcome `json:"outcome" jsonschema_description:"Classified result of the open cycle"`
}

// CheckResponse reports the capability verdict without opening anything.
type CheckResponse struct {
	Resource string `json:"resource" jsonschema_description:"The checked resource"`
	Support  string `json:"support" jsonschema_description:"Either supported or unsupported"`
}

// Server wraps the open service and exposes it as an MCP Server.
type Server struct {
	service    ports.OpenService
	classifier *usher.Classifier
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP Server instance. The opener backs the
// check_url tool; pass the same capability the service opens with.
func NewServer(service ports.OpenService, opener ports.Opener) *Server {
	s := &Server{
		service:    service,
		classifier: usher.NewClassifier(opener),
		mcpServer:  server.NewMCPServer("usher-mcp", strings.TrimSpace(usher.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: open_url
	openTool := mcp.NewTool("open_url",
		mcp.WithDescription("Open a resource with the host platform and wait for the classified outcome. Failures come back as outcome data, not tool errors."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Absolute URI to open, e.g. http://example.com")),
		mcp.WithOutputSchema[OpenResponse](),
	)
	s.mcpServer.AddTool(openTool, mcp.NewStructuredToolHandler(s.handleOpen))

	// TOOL: check_url
	checkTool := mcp.NewTool("check_url",
		mcp.WithDescription("Check whether the platform capability supports a resource, without opening it."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Absolute URI to check")),
		mcp.WithOutputSchema[CheckResponse](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheck))

	// TOOL: list_outcomes
	s.mcpServer.AddTool(mcp.NewTool("list_outcomes",
		mcp.WithDescription("List recorded open outcomes, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum outcomes to return (default 20, 0 for all)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := 20
		if raw, ok := request.GetArguments()["limit"].(float64); ok {
			limit = int(raw)
		}

		outcomes, err := s.service.Recent(ctx, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list outcomes failed: %v", err)), nil
		}

		jsonBytes, _ := json.Marshal(schema.OutcomesResponse{
			Outcomes: outcomes,
			Count:    len(outcomes),
		})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (OpenResponse, error) {
	resource, _ := args["resource"].(string)

	if err := schema.ValidateResource(resource); err != nil {
		slog.Warn("MCP open_url: resource rejected", "error", err, "resource", resource)
		return OpenResponse{}, fmt.Errorf("resource rejected: %w", err)
	}

	outcome, err := s.service.Open(ctx, resource)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			return OpenResponse{}, fmt.Errorf("another open attempt is in flight")
		}
		return OpenResponse{}, fmt.Errorf("open failed: %w", err)
	}

	return OpenResponse{Outcome: outcome}, nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CheckResponse, error) {
	resource, _ := args["resource"].(string)

	if err := schema.ValidateResource(resource); err != nil {
		return CheckResponse{}, fmt.Errorf("resource rejected: %w", err)
	}

	return CheckResponse{
		Resource: resource,
		Support:  string(s.classifier.ClassifyCapability(resource)),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: usher://status
	s.mcpServer.AddResource(mcp.NewResource("usher://status", "Pending Request State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		req, err := s.service.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read status: %w", err)
		}
		jsonBytes, _ := json.Marshal(schema.StatusFromRequest(req))

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "usher://status",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
