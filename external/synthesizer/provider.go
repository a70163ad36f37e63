// Package synthesizer implements the speech synthesis providers the
// orchestrator can be configured with: ElevenLabs, OpenAI, and a declared
// but unimplemented Azure variant. Each provider is an independent client
// behind the same internal contract.
package synthesizer

import (
	"fmt"
	"net/http"
	"time"

	"github.com/harshmriduhash/callbot/internal/synthesizer"
)

const (
	ProviderElevenLabs = "elevenlabs"
	ProviderOpenAI     = "openai"
	ProviderAzure      = "azure"
)

type Config struct {
	Provider string
	APIKey   string
	VoiceID  string
	Timeout  time.Duration
}

// New selects a provider by name. Unknown names fail at construction so a
// misconfigured deployment cannot come up and silently produce no audio.
func New(cfg Config) (synthesizer.Synthesizer, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case ProviderElevenLabs:
		return newElevenLabsSynthesizer(cfg.APIKey, cfg.VoiceID, client), nil
	case ProviderOpenAI:
		return newOpenAISynthesizer(cfg.APIKey, client), nil
	case ProviderAzure:
		return &azureSynthesizer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", synthesizer.ErrUnsupportedProvider, cfg.Provider)
	}
}
