package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/harshmriduhash/callbot/internal/session"
)

type mockCallHandler struct {
	startCalls []startCall
	startErr   error
	audioCalls []audioCall
	endCalls   []string
}

type startCall struct {
	callID  string
	ownerID string
	sink    session.AudioSink
}

type audioCall struct {
	callID  string
	payload []byte
}

func (m *mockCallHandler) StartSession(_ context.Context, callID, ownerID string, sink session.AudioSink) (*session.Session, error) {
	m.startCalls = append(m.startCalls, startCall{callID: callID, ownerID: ownerID, sink: sink})
	if m.startErr != nil {
		return nil, m.startErr
	}
	return &session.Session{ID: callID, OwnerID: ownerID}, nil
}

func (m *mockCallHandler) IngestAudio(callID string, frame session.AudioFrame) {
	m.audioCalls = append(m.audioCalls, audioCall{callID: callID, payload: frame.Payload})
}

func (m *mockCallHandler) EndSession(callID string) {
	m.endCalls = append(m.endCalls, callID)
}

type mockFrameWriter struct {
	frames [][]byte
	err    error
}

func (m *mockFrameWriter) WriteFrame(data []byte) error {
	m.frames = append(m.frames, data)
	return m.err
}

func startFrame(streamSid, accountSid string, params map[string]string) []byte {
	data, _ := json.Marshal(Frame{
		Event: EventStart,
		Start: &StartData{
			StreamSid:        streamSid,
			AccountSid:       accountSid,
			CallSid:          "CA1",
			CustomParameters: params,
		},
	})
	return data
}

func mediaFrame(payload []byte) []byte {
	data, _ := json.Marshal(Frame{
		Event: EventMedia,
		Media: &MediaData{Payload: base64.StdEncoding.EncodeToString(payload)},
	})
	return data
}

func TestAdapter_StartUsesOwnerParameter(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})

	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", map[string]string{"ownerId": "owner-1"}))

	if len(handler.startCalls) != 1 {
		t.Fatalf("expected one start, got %d", len(handler.startCalls))
	}
	got := handler.startCalls[0]
	if got.callID != "MZ1" || got.ownerID != "owner-1" {
		t.Fatalf("unexpected start call: %+v", got)
	}
	if got.sink != adapter {
		t.Fatal("expected the adapter itself as the audio sink")
	}
}

func TestAdapter_StartFallsBackToAccountSid(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})

	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", nil))

	if len(handler.startCalls) != 1 || handler.startCalls[0].ownerID != "AC1" {
		t.Fatalf("unexpected start calls: %+v", handler.startCalls)
	}
}

func TestAdapter_MediaForwardsDecodedAudio(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})
	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", nil))

	audio := []byte{0x7f, 0x80, 0xff}
	adapter.HandleMessage(context.Background(), mediaFrame(audio))

	if len(handler.audioCalls) != 1 {
		t.Fatalf("expected one audio call, got %d", len(handler.audioCalls))
	}
	got := handler.audioCalls[0]
	if got.callID != "MZ1" || string(got.payload) != string(audio) {
		t.Fatalf("unexpected audio call: %+v", got)
	}
}

func TestAdapter_DropsFramesBeforeStart(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})

	adapter.HandleMessage(context.Background(), mediaFrame([]byte{0x7f}))
	adapter.HandleMessage(context.Background(), []byte(`{"event":"stop"}`))

	if len(handler.audioCalls) != 0 || len(handler.endCalls) != 0 {
		t.Fatalf("expected nothing forwarded, got %+v %+v", handler.audioCalls, handler.endCalls)
	}
}

func TestAdapter_DropsMalformedAndUnknownFrames(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})
	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", nil))

	adapter.HandleMessage(context.Background(), []byte("not json"))
	adapter.HandleMessage(context.Background(), []byte(`{"event":"mark"}`))
	adapter.HandleMessage(context.Background(), []byte(`{"event":"media","media":{"payload":"%%%"}}`))

	if len(handler.audioCalls) != 0 {
		t.Fatalf("expected no audio forwarded, got %+v", handler.audioCalls)
	}
	if len(handler.endCalls) != 0 {
		t.Fatalf("expected no end calls, got %+v", handler.endCalls)
	}
}

func TestAdapter_StopEndsSession(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})
	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", nil))

	adapter.HandleMessage(context.Background(), []byte(`{"event":"stop","streamSid":"MZ1"}`))

	if len(handler.endCalls) != 1 || handler.endCalls[0] != "MZ1" {
		t.Fatalf("unexpected end calls: %+v", handler.endCalls)
	}
}

func TestAdapter_CloseEndsSessionOnConnectionDrop(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})
	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", nil))

	adapter.Close()

	if len(handler.endCalls) != 1 || handler.endCalls[0] != "MZ1" {
		t.Fatalf("unexpected end calls: %+v", handler.endCalls)
	}
}

func TestAdapter_CloseBeforeStartIsNoop(t *testing.T) {
	handler := &mockCallHandler{}
	adapter := NewAdapter(handler, &mockFrameWriter{})

	adapter.Close()

	if len(handler.endCalls) != 0 {
		t.Fatalf("unexpected end calls: %+v", handler.endCalls)
	}
}

func TestAdapter_PlayAudioWritesOutboundMediaFrame(t *testing.T) {
	handler := &mockCallHandler{}
	writer := &mockFrameWriter{}
	adapter := NewAdapter(handler, writer)
	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", nil))

	audio := []byte("synthesized")
	if err := adapter.PlayAudio(audio); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.frames) != 1 {
		t.Fatalf("expected one outbound frame, got %d", len(writer.frames))
	}
	frame, err := DecodeFrame(writer.frames[0])
	if err != nil {
		t.Fatalf("outbound frame not decodable: %v", err)
	}
	if frame.Event != EventMedia || frame.StreamSid != "MZ1" {
		t.Fatalf("unexpected outbound frame: %+v", frame)
	}
	decoded, _ := base64.StdEncoding.DecodeString(frame.Media.Payload)
	if string(decoded) != "synthesized" {
		t.Fatalf("unexpected outbound audio: %q", decoded)
	}
}

func TestAdapter_PlayAudioBeforeStartFails(t *testing.T) {
	handler := &mockCallHandler{}
	writer := &mockFrameWriter{}
	adapter := NewAdapter(handler, writer)

	if err := adapter.PlayAudio([]byte("x")); err == nil {
		t.Fatal("expected error when no call is bound")
	}
	if len(writer.frames) != 0 {
		t.Fatalf("expected no outbound frames, got %d", len(writer.frames))
	}
}

func TestAdapter_PlayAudioPropagatesWriteError(t *testing.T) {
	handler := &mockCallHandler{}
	writer := &mockFrameWriter{err: errors.New("socket closed")}
	adapter := NewAdapter(handler, writer)
	adapter.HandleMessage(context.Background(), startFrame("MZ1", "AC1", nil))

	if err := adapter.PlayAudio([]byte("x")); err == nil {
		t.Fatal("expected write error to propagate")
	}
}
