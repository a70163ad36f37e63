package session

import (
	"strings"
	"sync"
	"time"

	"github.com/harshmriduhash/callbot/internal/profile"
	"github.com/harshmriduhash/callbot/internal/transcriber"
)

// State is the lifecycle position of one call. Transitions only move
// forward: Initializing -> Active -> Draining -> Ended.
type State int32

const (
	StateInitializing State = iota
	StateActive
	StateDraining
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// AudioFrame is a timestamped chunk of caller audio. Frames are consumed
// immediately by the transcription stream and never persisted.
type AudioFrame struct {
	Payload    []byte
	ReceivedAt time.Time
}

// AudioSink plays synthesized audio back to the caller. The media
// transport provides one sink per connection.
type AudioSink interface {
	PlayAudio(audio []byte) error
}

type turnKind int

const (
	turnUtterance turnKind = iota
	turnReengage
)

// turn is one unit of conversational work. Turns for a session are
// processed strictly one at a time, in arrival order.
type turn struct {
	kind turnKind
	text string
}

// Session owns the live state of one phone call.
type Session struct {
	ID        string
	OwnerID   string
	StartedAt time.Time
	Profile   profile.BusinessProfile

	mu         sync.Mutex
	state      State
	transcript []string
	silence    *time.Timer

	writer transcriber.StreamWriter
	sink   AudioSink
	cancel func()
	done   <-chan struct{}
	turns  chan turn
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether the session still accepts audio and
// transcription results.
func (s *Session) Active() bool {
	return s.State() == StateActive
}

// TranscriptLines returns a copy of the conversation so far, in order.
func (s *Session) TranscriptLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]string, len(s.transcript))
	copy(lines, s.transcript)
	return lines
}

func (s *Session) appendLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, line)
}

func (s *Session) fullTranscript() string {
	return strings.Join(s.TranscriptLines(), "\n")
}
