// Package http exposes the open service over a REST surface with a live
// Server-Sent Events stream. The OpenAPI document is embedded and served
// alongside a Swagger page.
package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/aretw0/usher"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/observability"
	"github.com/aretw0/usher/pkg/ports"
	"github.com/aretw0/usher/pkg/schema"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Server handles the REST surface on top of an OpenService.
type Server struct {
	Service ports.OpenService
	Hub     *observability.Hub
}

// HandlerOption configures the handler.
type HandlerOption func(*Server)

// WithHub attaches a lifecycle event hub; /events streams from it. Without
// one the stream only ever carries the initial ping.
func WithHub(hub *observability.Hub) HandlerOption {
	return func(s *Server) {
		s.Hub = hub
	}
}

// NewHandler creates the HTTP handler for the service.
func NewHandler(service ports.OpenService, opts ...HandlerOption) http.Handler {
	server := &Server{
		Service: service,
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Hub == nil {
		server.Hub = observability.NewHub()
	}

	r := chi.NewRouter()

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Post("/open", server.Open)
	r.Get("/status", server.GetStatus)
	r.Get("/outcomes", server.GetOutcomes)
	r.Get("/events", server.SubscribeEvents)
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Usher API Documentation</title>
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

// Open handles the POST /open request. The cycle runs to completion before
// the response: failures come back as outcome data with status 200, only
// transport-level refusals map to error codes.
func (s *Server) Open(w http.ResponseWriter, r *http.Request) {
	var body schema.OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("Open: invalid request body", "error", err)
		return
	}

	if err := body.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		slog.Warn("Open: resource rejected", "error", err, "resource", body.Resource)
		return
	}

	outcome, err := s.Service.Open(r.Context(), body.Resource)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			writeError(w, http.StatusConflict, "another open attempt is in flight")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("open error: %v", err))
		slog.Error("Open failed", "error", err, "resource", body.Resource)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	req, err := s.Service.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("status error: %v", err))
		slog.Error("Status failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, schema.StatusFromRequest(req))
}

// GetOutcomes handles the GET /outcomes request.
func (s *Server) GetOutcomes(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %q", raw))
			return
		}
		limit = parsed
	}

	outcomes, err := s.Service.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("outcomes error: %v", err))
		slog.Error("Outcomes failed", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, schema.OutcomesResponse{
		Outcomes: outcomes,
		Count:    len(outcomes),
	})
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schema.HealthResponse{
		Status:  "ok",
		Version: strings.TrimSpace(usher.Version),
	})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := openapi3.NewLoader().LoadFromData(openapiSpec); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "usher-http",
		"version":     strings.TrimSpace(usher.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Parse 'watch' filter
	watch := map[domain.EventType]bool{}
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			watch[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	events, cancel := s.Hub.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("SSE client disconnected")
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[evt.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, evt.Data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, schema.ErrorResponse{Error: msg})
}
