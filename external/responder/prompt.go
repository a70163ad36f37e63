package responder

import (
	"fmt"
	"strings"

	"github.com/harshmriduhash/callbot/internal/profile"
)

// assistantPrompt frames the model as a member of the caller's business:
// named company, spoken greeting convention, and the owner's free-text
// operating description embedded verbatim.
func assistantPrompt(biz profile.BusinessProfile) string {
	niche := strings.ReplaceAll(biz.Niche, "-", " ")
	return fmt.Sprintf(`You are a voice assistant for a %s business named %s.
Begin each call with "Welcome to %s, how may I help you?"
Respond like a human staff member using this description: %s
Keep responses professional, helpful, and conversational. Always try to assist the caller with their needs.`,
		niche, biz.CompanyName, biz.CompanyName, biz.Description)
}

func replyPrompt(utterance string, biz profile.BusinessProfile) string {
	return fmt.Sprintf("%s\n\nCustomer said: %q\n\nRespond appropriately:", assistantPrompt(biz), utterance)
}

func summaryPrompt(transcript string, biz profile.BusinessProfile) string {
	return fmt.Sprintf(`Summarize this customer service call for %s:

Call transcript: %q

Provide a brief summary including:
- Customer's main request or concern
- Actions taken or information provided
- Any follow-up needed

Keep it concise and professional.`, biz.CompanyName, transcript)
}
