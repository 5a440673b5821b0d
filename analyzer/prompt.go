package analyzer

import (
	"fmt"
	"strings"

	"github.com/ctxrescue/ctxrescue/types"
)

// AnalysisSystemPrompt instructs the model to extract rescue information
// from a degraded conversation and reply in the exact sectioned format
// that ParseReply understands.
const AnalysisSystemPrompt = `You are analyzing a conversation between a user and an AI assistant that has become stuck in a loop or degraded state.

Your task: Extract key information to help rescue this conversation.

ANALYZE AND RESPOND IN THIS EXACT FORMAT:

GOAL:
[What is the user's original goal/objective? Be specific and clear.]

BLOCKER:
[What specific error, issue, or problem is causing the conversation to loop or fail?]

CURRENT_STATE:
[What is the last known good code or state? If there's working code, include it. If not, describe the current situation.]

LOOPS_DETECTED:
[List each loop/pattern detected in this format:]
- TYPE: [repetitive_error|circular_logic|apology_cascade|code_churn]
  OCCURRENCES: [number]
  DESCRIPTION: [what's repeating]

KEY_INSIGHTS:
[List important insights, decisions, or constraints that should be preserved:]
- [insight 1]
- [insight 2]

RECOMMENDED_STEPS:
[Suggest 2-3 fresh approaches to try:]
1. [step 1]
2. [step 2]

Be concise and actionable. Focus on extracting signal from noise.`

// BuildAnalysisUserPrompt creates the user message for an LLM-backed
// analysis call.
func BuildAnalysisUserPrompt(messages []*types.Message) string {
	return `Analyze the following conversation according to the format specified in your instructions.

<conversation>
` + FormatMessagesAsText(messages) + `
</conversation>`
}

// FormatMessagesAsText renders messages as numbered, role-labeled text.
func FormatMessagesAsText(messages []*types.Message) string {
	formatted := make([]string, 0, len(messages))
	for i, msg := range messages {
		formatted = append(formatted, fmt.Sprintf("[%d] %s: %s", i+1, strings.ToUpper(string(msg.Role)), msg.Content))
	}
	return strings.Join(formatted, "\n\n")
}
