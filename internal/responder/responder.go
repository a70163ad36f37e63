package responder

import (
	"context"

	"github.com/harshmriduhash/callbot/internal/profile"
)

const (
	// FallbackReply is spoken when reply generation fails for a turn.
	// The conversation continues; only this turn is degraded.
	FallbackReply = "I apologize, I'm having trouble processing your request. Could you please repeat that?"

	// FallbackSummary is persisted when summary generation fails.
	FallbackSummary = "Call summary unavailable"
)

// Responder produces conversational replies and end-of-call summaries.
// Implementations never return errors: any transport or parse failure
// maps to the fixed fallback strings so a bad model response cannot
// crash a live call.
type Responder interface {
	GenerateReply(ctx context.Context, utterance string, biz profile.BusinessProfile) string
	Summarize(ctx context.Context, transcript string, biz profile.BusinessProfile) string
}
