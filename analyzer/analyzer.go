// Package analyzer extracts structure from degraded conversations: the
// user's goal, the blocking issue, detected loop patterns, and
// recommended next steps.
//
// Two kinds of analyzer exist behind one interface: the rule-based
// Rules analyzer (pure heuristics, no network) and the LLM-backed
// Claude and OpenAI analyzers. The orchestrating client falls back to
// Rules when an LLM-backed analyzer fails.
package analyzer

import (
	"context"
	"errors"

	"github.com/ctxrescue/ctxrescue/types"
)

// Sentinel errors for analyzer operations.
var (
	// ErrAnalysisFailed indicates the LLM-backed analysis call failed.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrEmptyReply indicates the model returned no usable content.
	ErrEmptyReply = errors.New("empty reply from model")

	// ErrMissingAPIKey indicates the analyzer was constructed without a credential.
	ErrMissingAPIKey = errors.New("missing API key")
)

// Analyzer produces an Analysis from an ordered message sequence.
//
// Implementations must tolerate the empty sequence, returning sentinel
// values rather than failing. The context is honored by network-backed
// implementations; the rule-based analyzer completes synchronously and
// ignores it.
type Analyzer interface {
	AnalyzeConversation(ctx context.Context, messages []*types.Message) (*types.Analysis, error)
}

// Fixed sentinel strings used when a field cannot be derived.
const (
	GoalNotIdentified    = "Goal not clearly identified from conversation"
	BlockerNotIdentified = "Blocker not clearly identified"
	BlockerStuck         = "Conversation stuck in repetitive pattern without progress"
	StateUnclear         = "Current state unclear"
	NoBreakthroughs      = "No clear breakthroughs identified in conversation"
)
