package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/observability"
)

// MockService for testing
type MockService struct {
	OpenFunc   func(ctx context.Context, resource string) (domain.Outcome, error)
	StatusFunc func(ctx context.Context) (domain.Request, error)
	RecentFunc func(ctx context.Context, limit int) ([]domain.Outcome, error)

	openCalls []string
}

func (m *MockService) Open(ctx context.Context, resource string) (domain.Outcome, error) {
	m.openCalls = append(m.openCalls, resource)
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, resource)
	}
	return domain.Opened(resource), nil
}

func (m *MockService) Status(ctx context.Context) (domain.Request, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return domain.Idle(), nil
}

func (m *MockService) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return nil, nil
}

func postOpen(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/open", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestOpen_ReturnsOutcome(t *testing.T) {
	svc := &MockService{}
	handler := NewHandler(svc)

	w := postOpen(handler, `{"resource": "http://example.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var out domain.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode outcome: %v", err)
	}
	if out.Kind != domain.KindOpened {
		t.Errorf("Expected opened outcome, got %s", out.Kind)
	}
	if out.Resource != "http://example.com" {
		t.Errorf("Expected resource echo, got %s", out.Resource)
	}
}

func TestOpen_FailureIsData(t *testing.T) {
	svc := &MockService{
		OpenFunc: func(ctx context.Context, resource string) (domain.Outcome, error) {
			return domain.OpenFailed(resource, context.DeadlineExceeded), nil
		},
	}
	handler := NewHandler(svc)

	w := postOpen(handler, `{"resource": "http://example.com"}`)

	// A failed open is still a completed cycle: 200 with open_failed data.
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"kind":"open_failed"`) {
		t.Errorf("Expected open_failed kind in body: %s", w.Body.String())
	}
}

func TestOpen_RejectsInvalidResource(t *testing.T) {
	svc := &MockService{}
	handler := NewHandler(svc)

	w := postOpen(handler, `{"resource": "   "}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if len(svc.openCalls) != 0 {
		t.Error("Service must not be called for an invalid resource")
	}
}

func TestOpen_InvalidJSONBody(t *testing.T) {
	handler := NewHandler(&MockService{})

	w := postOpen(handler, `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestOpen_BusyMapsToConflict(t *testing.T) {
	svc := &MockService{
		OpenFunc: func(ctx context.Context, resource string) (domain.Outcome, error) {
			return domain.Outcome{}, domain.ErrBusy
		},
	}
	handler := NewHandler(svc)

	w := postOpen(handler, `{"resource": "http://example.com"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 Conflict, got %d", w.Code)
	}
}

func TestGetStatus(t *testing.T) {
	svc := &MockService{
		StatusFunc: func(ctx context.Context) (domain.Request, error) {
			return domain.Pending("http://example.com"), nil
		},
	}
	handler := NewHandler(svc)

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"state":"pending"`) {
		t.Errorf("Expected pending state: %s", body)
	}
	if !strings.Contains(body, `"resource":"http://example.com"`) {
		t.Errorf("Expected resource: %s", body)
	}
}

func TestGetOutcomes(t *testing.T) {
	var gotLimit int
	svc := &MockService{
		RecentFunc: func(ctx context.Context, limit int) ([]domain.Outcome, error) {
			gotLimit = limit
			return []domain.Outcome{domain.Opened("http://example.com")}, nil
		},
	}
	handler := NewHandler(svc)

	req := httptest.NewRequest("GET", "/outcomes?limit=5", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	if gotLimit != 5 {
		t.Errorf("Expected limit 5 passed through, got %d", gotLimit)
	}
	if !strings.Contains(w.Body.String(), `"count":1`) {
		t.Errorf("Expected count in body: %s", w.Body.String())
	}
}

func TestGetOutcomes_InvalidLimit(t *testing.T) {
	handler := NewHandler(&MockService{})

	req := httptest.NewRequest("GET", "/outcomes?limit=surprise", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(&MockService{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("Expected ok status: %s", w.Body.String())
	}
}

func TestSubscribeEvents_StreamsHubEvents(t *testing.T) {
	hub := observability.NewHub()
	handler := NewHandler(&MockService{}, WithHub(hub))

	// 1. Subscribe
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	// 2. Publish through the hub's hook surface
	hooks := hub.Hooks()
	out := domain.Opened("http://example.com")
	hooks.OnOutcome(context.Background(), &domain.OutcomeEvent{
		EventBase: domain.EventBase{Type: domain.EventOutcome, Resource: out.Resource},
		Outcome:   out,
	})

	time.Sleep(50 * time.Millisecond)

	// 3. Stop the stream and inspect what was written
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: ping") {
		t.Error("Expected initial ping event")
	}
	if !strings.Contains(body, "event: outcome") {
		t.Errorf("Expected outcome event in stream: %s", body)
	}
	if !strings.Contains(body, `"kind":"opened"`) {
		t.Errorf("Expected outcome payload in stream: %s", body)
	}
}

func TestSubscribeEvents_WatchFilter(t *testing.T) {
	hub := observability.NewHub()
	handler := NewHandler(&MockService{}, WithHub(hub))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events?watch=conflict", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	hooks := hub.Hooks()
	hooks.OnOutcome(context.Background(), &domain.OutcomeEvent{
		EventBase: domain.EventBase{Type: domain.EventOutcome, Resource: "http://example.com"},
		Outcome:   domain.Opened("http://example.com"),
	})
	hooks.OnConflict(context.Background(), &domain.ConflictEvent{
		EventBase: domain.EventBase{Type: domain.EventConflict, Resource: "http://example.com/b"},
		Active:    "http://example.com",
	})

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: conflict") {
		t.Errorf("Expected watched conflict event: %s", body)
	}
	if strings.Contains(body, "event: outcome") {
		t.Errorf("Unwatched outcome event must be filtered out: %s", body)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	req := httptest.NewRequest("GET", "/openapi.yaml", nil)
	w := httptest.NewRecorder()
	NewHandler(&MockService{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}

	// The served document must parse and validate as OpenAPI 3.
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(w.Body.Bytes())
	if err != nil {
		t.Fatalf("Spec failed to load: %v", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		t.Fatalf("Spec failed validation: %v", err)
	}

	for _, path := range []string{"/open", "/status", "/outcomes", "/events", "/healthz"} {
		if doc.Paths.Find(path) == nil {
			t.Errorf("Spec is missing path %s", path)
		}
	}
}
