package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harshmriduhash/callbot/internal/calllog"
	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/profile"
	"github.com/harshmriduhash/callbot/internal/responder"
	"github.com/harshmriduhash/callbot/internal/synthesizer"
	"github.com/harshmriduhash/callbot/internal/transcriber"
)

const (
	// reengagePrompt is spoken when the caller has been silent for the
	// configured window. It never ends the call.
	reengagePrompt = "Is there anything else I can help you with today?"

	// completedSummary is persisted when a call ends with nothing to
	// summarize.
	completedSummary = "Call completed"

	turnQueueSize = 16
)

// Coordinator drives the lifecycle of every call session: ingress audio,
// turn-taking, silence prompts, and end-of-call summaries. Sessions are
// fully isolated from each other; the only shared state is the registry.
type Coordinator struct {
	cfg         *config.Config
	profiles    profile.Store
	calllogs    calllog.Repository
	transcriber transcriber.Transcriber
	synth       synthesizer.Synthesizer
	responder   responder.Responder
	registry    *Registry
}

func NewCoordinator(
	cfg *config.Config,
	profiles profile.Store,
	calllogs calllog.Repository,
	stt transcriber.Transcriber,
	synth synthesizer.Synthesizer,
	resp responder.Responder,
	registry *Registry,
) *Coordinator {
	return &Coordinator{
		cfg:         cfg,
		profiles:    profiles,
		calllogs:    calllogs,
		transcriber: stt,
		synth:       synth,
		responder:   resp,
		registry:    registry,
	}
}

// StartSession brings up the session for one call: resolves the owner's
// business profile, records a pending call log, opens the transcription
// stream, and registers the session. A missing profile or a refused
// stream aborts the start; a failed call log write does not.
func (c *Coordinator) StartSession(ctx context.Context, callID, ownerID string, sink AudioSink) (*Session, error) {
	if existing := c.registry.Get(callID); existing != nil {
		slog.Warn("session already active for call", "call_id", callID)
		return existing, nil
	}
	slog.Info("start session requested", "call_id", callID, "owner_id", ownerID)

	prof, err := c.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			slog.Error("no business profile for owner; refusing call", "call_id", callID, "owner_id", ownerID)
			return nil, fmt.Errorf("start session %s: %w", callID, err)
		}
		return nil, fmt.Errorf("resolve business profile: %w", err)
	}

	s := &Session{
		ID:        callID,
		OwnerID:   ownerID,
		StartedAt: time.Now(),
		Profile:   *prof,
		state:     StateInitializing,
		turns:     make(chan turn, turnQueueSize),
	}

	logCtx, cancelLog := context.WithTimeout(ctx, c.cfg.ExternalCallTimeout())
	if err := c.calllogs.InsertPending(logCtx, calllog.InsertPendingInput{
		OwnerID:   ownerID,
		StartedAt: s.StartedAt,
	}); err != nil {
		slog.Error("failed to insert pending call log", "error", err, "call_id", callID, "owner_id", ownerID)
	}
	cancelLog()

	streamCtx, cancel := context.WithCancel(context.Background())
	receiver := &resultReceiver{coordinator: c, session: s}
	writer, err := c.transcriber.StartStreaming(streamCtx, callID, c.cfg.TranscribeLanguage, receiver)
	if err != nil {
		cancel()
		slog.Error("failed to open transcription stream", "error", err, "call_id", callID)
		return nil, fmt.Errorf("open transcription stream: %w", err)
	}

	s.mu.Lock()
	s.writer = writer
	s.sink = sink
	s.cancel = cancel
	s.done = streamCtx.Done()
	s.state = StateActive
	s.mu.Unlock()

	c.registry.Register(s)
	go c.runTurnLoop(streamCtx, s)
	c.armSilenceTimer(s)

	slog.Info("session activated", "call_id", callID, "owner_id", ownerID, "company", prof.CompanyName)
	return s, nil
}

// IngestAudio forwards one caller audio frame to the transcription
// stream. Frames outside an Active session are dropped and logged.
func (c *Coordinator) IngestAudio(callID string, frame AudioFrame) {
	s := c.registry.Get(callID)
	if s == nil || !s.Active() {
		slog.Debug("audio frame ignored outside active session", "call_id", callID)
		return
	}
	if err := s.writer.Write(frame.Payload); err != nil {
		slog.Error("failed to write audio to transcription stream", "error", err, "call_id", callID, "frame_bytes", len(frame.Payload))
	}
}

// EndSession tears a call down: stops transcription, generates and
// persists the summary, and removes the session from the registry.
// Safe to call more than once; only the first call does the work.
func (c *Coordinator) EndSession(callID string) {
	s := c.registry.Get(callID)
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.state = StateDraining
	if s.silence != nil {
		s.silence.Stop()
		s.silence = nil
	}
	writer := s.writer
	cancel := s.cancel
	s.mu.Unlock()

	slog.Info("ending session", "call_id", callID, "owner_id", s.OwnerID)
	cancel()
	if err := writer.Close(); err != nil {
		slog.Error("failed to close transcription stream", "error", err, "call_id", callID)
	}

	duration := int64(time.Since(s.StartedAt).Seconds())
	transcript := s.fullTranscript()
	summary := completedSummary
	if transcript != "" {
		summaryCtx, cancelSummary := context.WithTimeout(context.Background(), c.cfg.ExternalCallTimeout())
		summary = c.responder.Summarize(summaryCtx, transcript, s.Profile)
		cancelSummary()
	}

	logCtx, cancelLog := context.WithTimeout(context.Background(), c.cfg.ExternalCallTimeout())
	if err := c.calllogs.FinalizeCall(logCtx, calllog.FinalizeCallInput{
		OwnerID:         s.OwnerID,
		StartedAt:       s.StartedAt,
		DurationSeconds: duration,
		Summary:         summary,
	}); err != nil {
		slog.Error("failed to finalize call log", "error", err, "call_id", callID, "owner_id", s.OwnerID)
	}
	cancelLog()

	c.registry.Unregister(callID)
	s.mu.Lock()
	s.state = StateEnded
	s.mu.Unlock()
	slog.Info("session ended", "call_id", callID, "duration_seconds", duration)
}

// Shutdown ends every live session, used on process termination so
// in-flight calls still get their summaries persisted.
func (c *Coordinator) Shutdown() {
	for _, s := range c.registry.ListActive() {
		c.EndSession(s.ID)
	}
}

// handleTranscription is the per-result callback from the transcription
// stream. Every result rearms the silence timer; only finalized,
// non-empty results become conversational turns.
func (c *Coordinator) handleTranscription(s *Session, text string, confidence float64, isFinal bool) {
	if !s.Active() {
		return
	}
	c.armSilenceTimer(s)
	if !isFinal || strings.TrimSpace(text) == "" {
		return
	}
	slog.Debug("finalized utterance", "call_id", s.ID, "confidence", confidence)
	s.appendLine("Customer: " + text)
	select {
	case s.turns <- turn{kind: turnUtterance, text: text}:
	case <-s.done:
	}
}

// runTurnLoop serializes all conversational work for one session. A new
// finalized utterance cannot begin a reply while the previous turn is
// still running; it waits in the queue.
func (c *Coordinator) runTurnLoop(ctx context.Context, s *Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-s.turns:
			switch t.kind {
			case turnUtterance:
				c.runReplyTurn(ctx, s, t.text)
			case turnReengage:
				c.speak(ctx, s, reengagePrompt)
				c.armSilenceTimer(s)
			}
		}
	}
}

// runReplyTurn produces exactly one AI transcript line for the
// utterance. If the generated reply cannot be synthesized, the fixed
// apology takes its place and gets one synthesis attempt of its own; a
// second failure leaves the turn silent but never stalls the call.
func (c *Coordinator) runReplyTurn(ctx context.Context, s *Session, utterance string) {
	replyCtx, cancelReply := context.WithTimeout(ctx, c.cfg.ExternalCallTimeout())
	reply := c.responder.GenerateReply(replyCtx, utterance, s.Profile)
	cancelReply()

	audio, err := c.synthesize(ctx, reply)
	if (err != nil || len(audio) == 0) && reply != responder.FallbackReply {
		slog.Warn("reply synthesis failed; substituting apology", "error", err, "call_id", s.ID)
		reply = responder.FallbackReply
		audio, err = c.synthesize(ctx, reply)
	}

	s.appendLine("AI: " + reply)

	if err != nil || len(audio) == 0 {
		slog.Error("no audio produced for turn; continuing without playback", "error", err, "call_id", s.ID)
		return
	}
	if err := s.sink.PlayAudio(audio); err != nil {
		slog.Error("failed to play reply audio", "error", err, "call_id", s.ID)
	}
}

// speak appends a scripted line and plays it; failures are logged only.
func (c *Coordinator) speak(ctx context.Context, s *Session, text string) {
	if !s.Active() {
		return
	}
	s.appendLine("AI: " + text)
	audio, err := c.synthesize(ctx, text)
	if err != nil || len(audio) == 0 {
		slog.Error("failed to synthesize scripted prompt", "error", err, "call_id", s.ID)
		return
	}
	if err := s.sink.PlayAudio(audio); err != nil {
		slog.Error("failed to play scripted prompt", "error", err, "call_id", s.ID)
	}
}

func (c *Coordinator) synthesize(ctx context.Context, text string) ([]byte, error) {
	synthCtx, cancel := context.WithTimeout(ctx, c.cfg.ExternalCallTimeout())
	defer cancel()
	return c.synth.Synthesize(synthCtx, text)
}

// armSilenceTimer (re)schedules the re-engagement prompt. Called on
// session start and on every transcription callback.
func (c *Coordinator) armSilenceTimer(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	if s.silence != nil {
		s.silence.Stop()
	}
	s.silence = time.AfterFunc(c.cfg.MaxSilenceDuration(), func() {
		c.handleSilenceTimeout(s)
	})
}

func (c *Coordinator) handleSilenceTimeout(s *Session) {
	if !s.Active() {
		return
	}
	slog.Info("silence window elapsed; queueing re-engagement prompt", "call_id", s.ID)
	select {
	case s.turns <- turn{kind: turnReengage}:
	case <-s.done:
	}
}

type resultReceiver struct {
	coordinator *Coordinator
	session     *Session
}

func (r *resultReceiver) OnResult(text string, confidence float64, isFinal bool) {
	r.coordinator.handleTranscription(r.session, text, confidence, isFinal)
}

func (r *resultReceiver) OnError(err error) {
	if errors.Is(err, context.Canceled) || strings.Contains(err.Error(), "operation was cancelled") {
		slog.Info("transcriber stream canceled", "error", err, "call_id", r.session.ID)
		return
	}
	slog.Error("transcriber stream error", "error", err, "call_id", r.session.ID)
}
