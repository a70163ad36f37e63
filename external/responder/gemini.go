package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harshmriduhash/callbot/internal/profile"
	"github.com/harshmriduhash/callbot/internal/responder"
	"google.golang.org/genai"
)

// emptyReply is spoken when the model answered but produced no usable
// text, as opposed to the transport-level fallback.
const emptyReply = "I'm sorry, I didn't understand that. Could you please repeat?"

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type GeminiResponder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiResponder(ctx context.Context, cfg GeminiConfig) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiResponder{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

func (r *GeminiResponder) GenerateReply(ctx context.Context, utterance string, biz profile.BusinessProfile) string {
	text, err := r.generate(ctx, replyPrompt(utterance, biz))
	if err != nil {
		slog.Error("reply generation failed", "error", err, "company", biz.CompanyName)
		return responder.FallbackReply
	}
	if text == "" {
		return emptyReply
	}
	return text
}

func (r *GeminiResponder) Summarize(ctx context.Context, transcript string, biz profile.BusinessProfile) string {
	text, err := r.generate(ctx, summaryPrompt(transcript, biz))
	if err != nil {
		slog.Error("summary generation failed", "error", err, "company", biz.CompanyName)
		return responder.FallbackSummary
	}
	if text == "" {
		return responder.FallbackSummary
	}
	return text
}

func (r *GeminiResponder) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
