package synthesizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/harshmriduhash/callbot/internal/synthesizer"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	// Rachel, the stock voice used when no voice is configured.
	elevenLabsDefaultVoiceID = "pNInz6obpgDQGcFmaJgB"

	elevenLabsModelID = "eleven_monolingual_v1"

	// Telephony playback wants 8 kHz mulaw, so no transcoding is needed
	// between the provider and the media stream.
	elevenLabsOutputFormat = "ulaw_8000"
)

type elevenLabsSynthesizer struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
}

func newElevenLabsSynthesizer(apiKey, voiceID string, client *http.Client) *elevenLabsSynthesizer {
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoiceID
	}
	return &elevenLabsSynthesizer{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: elevenLabsBaseURL,
		client:  client,
	}
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (s *elevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModelID,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", s.baseURL, s.voiceID, elevenLabsOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/basic")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", synthesizer.ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: elevenlabs returned status %d", synthesizer.ErrProvider, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", synthesizer.ErrProvider, err)
	}
	return audio, nil
}
