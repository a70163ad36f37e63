package synthesizer

import (
	"context"
	"errors"
)

var (
	// ErrProvider is returned when the provider rejects or fails a
	// synthesis request. Callers treat it as "no audio for this turn".
	ErrProvider = errors.New("speech synthesis provider error")

	// ErrUnsupportedProvider is returned for providers that are declared
	// in configuration but have no working implementation.
	ErrUnsupportedProvider = errors.New("unsupported speech synthesis provider")
)

// Synthesizer converts reply text into an audio payload the telephony
// transport can play back. A nil error with an empty payload is a valid
// outcome and means the provider produced no audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
