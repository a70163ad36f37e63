package mediaserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/session"
	"github.com/harshmriduhash/callbot/internal/transport"
)

// Server exposes the telephony-facing HTTP surface: the TwiML webhook
// that points the provider at us, the media stream websocket, and a
// small operational view of live calls.
type Server struct {
	cfg         *config.Config
	coordinator *session.Coordinator
	registry    *session.Registry
	upgrader    websocket.Upgrader
}

func NewServer(cfg *config.Config, coordinator *session.Coordinator, registry *session.Registry) *Server {
	return &Server{
		cfg:         cfg,
		coordinator: coordinator,
		registry:    registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The telephony provider connects server-to-server with no
			// Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/twiml", s.handleTwiML)
	r.Get("/media-stream", s.handleMediaStream)
	r.Get("/calls/active", s.handleActiveCalls)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

const twimlDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Connect>
    <Stream url="%s://%s/media-stream" />
  </Connect>
</Response>
`

// handleTwiML answers the provider's incoming-call webhook with a
// document that connects the call's audio to our websocket endpoint.
func (s *Server) handleTwiML(w http.ResponseWriter, r *http.Request) {
	scheme := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, twimlDocument, scheme, r.Host)
}

func (s *Server) handleMediaStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("media stream upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()
	slog.Info("media stream connected", "remote", r.RemoteAddr)

	adapter := transport.NewAdapter(s.coordinator, &wsFrameWriter{conn: conn})
	defer adapter.Close()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("media stream closed unexpectedly", "error", err, "remote", r.RemoteAddr)
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		adapter.HandleMessage(r.Context(), data)
	}
}

type activeCall struct {
	CallID          string    `json:"call_id"`
	OwnerID         string    `json:"owner_id"`
	Company         string    `json:"company"`
	State           string    `json:"state"`
	StartedAt       time.Time `json:"started_at"`
	TranscriptLines int       `json:"transcript_lines"`
}

func (s *Server) handleActiveCalls(w http.ResponseWriter, _ *http.Request) {
	sessions := s.registry.ListActive()
	calls := make([]activeCall, 0, len(sessions))
	for _, sess := range sessions {
		calls = append(calls, activeCall{
			CallID:          sess.ID,
			OwnerID:         sess.OwnerID,
			Company:         sess.Profile.CompanyName,
			State:           sess.State().String(),
			StartedAt:       sess.StartedAt,
			TranscriptLines: len(sess.TranscriptLines()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"calls": calls}); err != nil {
		slog.Error("failed to encode active calls", "error", err)
	}
}

// wsFrameWriter serializes concurrent writes onto one websocket
// connection; gorilla permits only a single writer at a time.
type wsFrameWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsFrameWriter) WriteFrame(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}
