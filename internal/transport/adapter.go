package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/harshmriduhash/callbot/internal/session"
)

var errNoCallBound = errors.New("no call bound to this connection")

// ownerParameter is the custom stream parameter that names the business
// account a call belongs to. The account identifier is the fallback.
const ownerParameter = "ownerId"

// CallHandler is the session-facing side of the adapter, satisfied by
// the session coordinator.
type CallHandler interface {
	StartSession(ctx context.Context, callID, ownerID string, sink session.AudioSink) (*session.Session, error)
	IngestAudio(callID string, frame session.AudioFrame)
	EndSession(callID string)
}

// FrameWriter sends one encoded frame back over the transport socket.
type FrameWriter interface {
	WriteFrame(data []byte) error
}

// Adapter bridges one media stream connection to the call session it
// carries. Malformed or unrecognized frames are logged and dropped;
// they never take the connection down.
type Adapter struct {
	calls CallHandler
	out   FrameWriter

	mu     sync.Mutex
	callID string
}

func NewAdapter(calls CallHandler, out FrameWriter) *Adapter {
	return &Adapter{calls: calls, out: out}
}

func (a *Adapter) HandleMessage(ctx context.Context, data []byte) {
	frame, err := DecodeFrame(data)
	if err != nil {
		slog.Warn("ignoring malformed transport frame", "error", err)
		return
	}

	switch frame.Event {
	case EventStart:
		a.handleStart(ctx, frame)
	case EventMedia:
		a.handleMedia(frame)
	case EventStop:
		a.handleStop()
	default:
		slog.Warn("ignoring unrecognized transport event", "event", frame.Event)
	}
}

func (a *Adapter) handleStart(ctx context.Context, frame *Frame) {
	if frame.Start == nil || frame.Start.StreamSid == "" {
		slog.Warn("ignoring start frame without stream identifier")
		return
	}
	ownerID := frame.Start.CustomParameters[ownerParameter]
	if ownerID == "" {
		ownerID = frame.Start.AccountSid
	}
	if ownerID == "" {
		slog.Warn("ignoring start frame without owner", "call_id", frame.Start.StreamSid)
		return
	}

	a.mu.Lock()
	a.callID = frame.Start.StreamSid
	a.mu.Unlock()

	if _, err := a.calls.StartSession(ctx, frame.Start.StreamSid, ownerID, a); err != nil {
		slog.Error("call refused", "error", err, "call_id", frame.Start.StreamSid, "owner_id", ownerID)
	}
}

func (a *Adapter) handleMedia(frame *Frame) {
	callID := a.currentCallID()
	if callID == "" {
		slog.Warn("ignoring media frame before start")
		return
	}
	if frame.Media == nil {
		slog.Warn("ignoring media frame without payload", "call_id", callID)
		return
	}
	payload, err := base64.StdEncoding.DecodeString(frame.Media.Payload)
	if err != nil {
		slog.Warn("ignoring media frame with invalid payload", "error", err, "call_id", callID)
		return
	}
	a.calls.IngestAudio(callID, session.AudioFrame{
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
}

func (a *Adapter) handleStop() {
	callID := a.currentCallID()
	if callID == "" {
		slog.Warn("ignoring stop frame before start")
		return
	}
	a.calls.EndSession(callID)
}

// PlayAudio pushes synthesized audio to the caller as an outbound media
// frame, making the adapter the session's audio sink.
func (a *Adapter) PlayAudio(audio []byte) error {
	callID := a.currentCallID()
	if callID == "" {
		return errNoCallBound
	}
	data, err := EncodeMediaFrame(callID, audio)
	if err != nil {
		return err
	}
	return a.out.WriteFrame(data)
}

// Close ends the call when the transport connection drops. Harmless if
// the call already ended via a stop frame.
func (a *Adapter) Close() {
	if callID := a.currentCallID(); callID != "" {
		a.calls.EndSession(callID)
	}
}

func (a *Adapter) currentCallID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.callID
}
