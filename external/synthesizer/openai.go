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
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "tts-1"
	openAIVoice   = "alloy"
)

type openAISynthesizer struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAISynthesizer(apiKey string, client *http.Client) *openAISynthesizer {
	return &openAISynthesizer{
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		client:  client,
	}
}

type openAIRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

func (s *openAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(openAIRequest{
		Model: openAIModel,
		Input: text,
		Voice: openAIVoice,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", synthesizer.ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: openai returned status %d", synthesizer.ErrProvider, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", synthesizer.ErrProvider, err)
	}
	return audio, nil
}
