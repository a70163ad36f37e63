package mediaserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/profile"
	"github.com/harshmriduhash/callbot/internal/session"
)

func newTestServer() (*Server, *session.Registry) {
	registry := session.NewRegistry()
	cfg := &config.Config{Env: "test", Port: "5001"}
	return NewServer(cfg, nil, registry), registry
}

func TestHandleTwiML_ConnectsStreamToHost(t *testing.T) {
	server, _ := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/twiml", nil)
	req.Host = "calls.example.com"

	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/xml" {
		t.Fatalf("unexpected content type: %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<Stream url="ws://calls.example.com/media-stream" />`) {
		t.Fatalf("unexpected twiml body: %q", body)
	}
	if !strings.Contains(body, "<Connect>") {
		t.Fatalf("missing connect element: %q", body)
	}
}

func TestHandleTwiML_UsesSecureSchemeBehindProxy(t *testing.T) {
	server, _ := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/twiml", nil)
	req.Host = "calls.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")

	server.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `wss://calls.example.com/media-stream`) {
		t.Fatalf("expected wss url, got %q", rec.Body.String())
	}
}

func TestHandleActiveCalls_ListsRegisteredSessions(t *testing.T) {
	server, registry := newTestServer()
	registry.Register(&session.Session{
		ID:        "call-1",
		OwnerID:   "owner-1",
		StartedAt: time.Now(),
		Profile:   profile.BusinessProfile{OwnerID: "owner-1", CompanyName: "Acme Dental"},
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calls/active", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body struct {
		Calls []activeCall `json:"calls"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Calls) != 1 {
		t.Fatalf("expected one call, got %d", len(body.Calls))
	}
	got := body.Calls[0]
	if got.CallID != "call-1" || got.OwnerID != "owner-1" || got.Company != "Acme Dental" {
		t.Fatalf("unexpected call entry: %+v", got)
	}
}

func TestHandleActiveCalls_EmptyRegistry(t *testing.T) {
	server, _ := newTestServer()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calls/active", nil))

	var body struct {
		Calls []activeCall `json:"calls"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Calls) != 0 {
		t.Fatalf("expected no calls, got %+v", body.Calls)
	}
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
