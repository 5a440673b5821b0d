package types

import "fmt"

// PatternType identifies a detected loop pattern.
// The set is open: an LLM-backed analyzer may report types outside the
// constants below.
type PatternType string

const (
	// PatternRepetitiveError is the same error signature recurring.
	PatternRepetitiveError PatternType = "repetitive_error"

	// PatternApologyCascade is repeated assistant apologies without progress.
	PatternApologyCascade PatternType = "apology_cascade"

	// PatternCodeChurn is near-identical code blocks posted repeatedly.
	PatternCodeChurn PatternType = "code_churn"
)

// LoopPattern is a detected repeated or degenerate structure in a
// conversation. FirstIndex and LastIndex are positions into the exact
// message sequence the pattern was computed against; a pattern is only
// meaningful paired with that sequence.
type LoopPattern struct {
	Type        PatternType `json:"pattern_type"`
	Occurrences int         `json:"occurrences"`
	FirstIndex  int         `json:"first_index"`
	LastIndex   int         `json:"last_index"`
	Description string      `json:"description"`
}

// String returns a compact representation for logs and CLI output.
func (p LoopPattern) String() string {
	return fmt.Sprintf("%s (x%d): %s", p.Type, p.Occurrences, p.Description)
}

// Analysis is the result of analyzing a conversation. Created once per
// analysis run and read-only afterward; the caller hands it to the
// sanitizer and the rescue-package renderer.
type Analysis struct {
	// Goal is the user's extracted original objective.
	Goal string `json:"goal"`

	// Blocker is the specific issue causing the loop.
	Blocker string `json:"blocker"`

	// KeyInsights are decisions and constraints worth preserving.
	KeyInsights []string `json:"key_insights"`

	// LoopsDetected are the problematic patterns found.
	LoopsDetected []LoopPattern `json:"loops_detected"`

	// CurrentState is the last known good code or context, if any.
	CurrentState string `json:"current_state,omitempty"`

	// RecommendedSteps are suggested next approaches.
	RecommendedSteps []string `json:"recommended_steps"`
}

// TotalLoops returns the sum of occurrences across all detected patterns.
func (a *Analysis) TotalLoops() int {
	total := 0
	for _, loop := range a.LoopsDetected {
		total += loop.Occurrences
	}
	return total
}

// Summary returns a human-readable one-paragraph summary.
func (a *Analysis) Summary() string {
	return fmt.Sprintf("Goal: %s\nBlocker: %s\nLoops detected: %d patterns, %d total occurrences\nKey insights: %d",
		a.Goal, a.Blocker, len(a.LoopsDetected), a.TotalLoops(), len(a.KeyInsights))
}
