// Package sanitize removes loop noise from conversations.
//
// The sanitizer consumes an Analysis (specifically its loop findings)
// plus the original message sequence and produces a filtered view:
// same message values, subset of positions, order preserved. Messages
// are never edited, only included or excluded.
package sanitize

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/ctxrescue/ctxrescue/internal/textscan"
	"github.com/ctxrescue/ctxrescue/types"
)

// Level is the sanitization aggressiveness.
type Level string

const (
	// LevelMinimal removes only the detected loops.
	LevelMinimal Level = "minimal"

	// LevelBalanced additionally caps repeated errors and drops filler.
	LevelBalanced Level = "balanced"

	// LevelAggressive keeps a single occurrence per error and code
	// signature and drops filler.
	LevelAggressive Level = "aggressive"
)

// ErrUnknownLevel indicates an unrecognized sanitization level.
var ErrUnknownLevel = errors.New("unknown sanitization level")

// ParseLevel parses a level name. Unknown names are a configuration
// error, surfaced before any analysis runs.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(s)) {
	case LevelMinimal:
		return LevelMinimal, nil
	case LevelBalanced:
		return LevelBalanced, nil
	case LevelAggressive:
		return LevelAggressive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// fillerPhrases are short acknowledgments with no information value.
var fillerPhrases = []string{
	"sure", "okay", "got it", "understood",
	"let me try", "i'll fix", "one moment",
}

// Sanitizer filters conversations according to detected loops and a
// configured aggressiveness level.
type Sanitizer struct {
	level Level
}

// New creates a Sanitizer. An empty level defaults to balanced.
func New(level Level) *Sanitizer {
	if level == "" {
		level = LevelBalanced
	}
	return &Sanitizer{level: level}
}

// Level returns the configured aggressiveness.
func (s *Sanitizer) Level() Level {
	return s.level
}

// Sanitize returns the filtered message sequence. The result is never
// longer than the input, and aggressive never removes fewer messages
// than balanced, which never removes fewer than minimal.
func (s *Sanitizer) Sanitize(messages []*types.Message, analysis *types.Analysis) []*types.Message {
	remove := removalIndices(messages, analysis)

	sanitized := make([]*types.Message, 0, len(messages))
	for i, msg := range messages {
		if !remove[i] {
			sanitized = append(sanitized, msg)
		}
	}

	switch s.level {
	case LevelAggressive:
		return aggressiveCleanup(sanitized)
	case LevelBalanced:
		return balancedCleanup(sanitized)
	}
	// Minimal: just the loop removals, no additional cleanup.
	return sanitized
}

// removalIndices computes the loop-based removal set, per pattern type:
//
//   - repetitive_error: keep the first index of the range, remove the
//     rest. This removes every index in the range, not just the ones
//     matching the error signature — a deliberate approximation carried
//     from the detection design (see DESIGN.md), sound only when the
//     range is tight.
//   - apology_cascade: re-scan the range for apology messages, keep the
//     first, remove the rest.
//   - code_churn: remove everything but the last index; the final
//     version of churned code is assumed to be the most refined.
func removalIndices(messages []*types.Message, analysis *types.Analysis) map[int]bool {
	remove := make(map[int]bool)

	for _, loop := range analysis.LoopsDetected {
		switch loop.Type {
		case types.PatternRepetitiveError:
			for i := loop.FirstIndex + 1; i <= loop.LastIndex; i++ {
				remove[i] = true
			}

		case types.PatternApologyCascade:
			apologies := apologyIndices(messages, loop.FirstIndex, loop.LastIndex)
			if len(apologies) > 1 {
				for _, i := range apologies[1:] {
					remove[i] = true
				}
			}

		case types.PatternCodeChurn:
			for i := loop.FirstIndex; i < loop.LastIndex; i++ {
				remove[i] = true
			}
		}
	}

	return remove
}

// apologyIndices finds apology messages within [start, end], clamped to
// the sequence bounds. The phrase test alone decides; role is not
// rechecked here.
func apologyIndices(messages []*types.Message, start, end int) []int {
	if start < 0 {
		start = 0
	}
	var indices []int
	for i := start; i <= end && i < len(messages); i++ {
		if textscan.IsApology(messages[i].Content) {
			indices = append(indices, i)
		}
	}
	return indices
}

// balancedCleanup keeps at most the first 2 occurrences of each error
// signature and drops filler messages.
func balancedCleanup(messages []*types.Message) []*types.Message {
	cleaned := make([]*types.Message, 0, len(messages))
	errorCount := make(map[string]int)

	for _, msg := range messages {
		if textscan.IsError(msg.Content) {
			sig := textscan.ErrorSignature(msg.Content)
			errorCount[sig]++
			if errorCount[sig] > 2 {
				continue
			}
		}
		if isFiller(msg) {
			continue
		}
		cleaned = append(cleaned, msg)
	}
	return cleaned
}

// aggressiveCleanup keeps only the first occurrence per error signature
// and per leading-code-block hash, and drops filler messages.
func aggressiveCleanup(messages []*types.Message) []*types.Message {
	cleaned := make([]*types.Message, 0, len(messages))
	seenErrors := make(map[string]bool)
	seenCode := make(map[uint64]bool)

	for _, msg := range messages {
		if textscan.IsError(msg.Content) {
			sig := textscan.ErrorSignature(msg.Content)
			if seenErrors[sig] {
				continue
			}
			seenErrors[sig] = true
		}

		if blocks := textscan.ExtractCodeBlocks(msg.Content); len(blocks) > 0 {
			h := codeSignature(blocks[0])
			if seenCode[h] {
				continue
			}
			seenCode[h] = true
		}

		if isFiller(msg) {
			continue
		}
		cleaned = append(cleaned, msg)
	}
	return cleaned
}

// codeSignature hashes the first 500 characters of a code block for
// deduplication.
func codeSignature(block string) uint64 {
	if len(block) > 500 {
		block = block[:500]
	}
	h := fnv.New64a()
	h.Write([]byte(block))
	return h.Sum64()
}

// isFiller reports whether an assistant message is a short, low-value
// acknowledgment eligible for removal.
func isFiller(msg *types.Message) bool {
	if msg.Role != types.RoleAssistant {
		return false
	}

	lowered := strings.TrimSpace(strings.ToLower(msg.Content))

	if len(lowered) < 30 && !strings.Contains(msg.Content, "```") {
		return true
	}
	for _, phrase := range fillerPhrases {
		if lowered == phrase {
			return true
		}
	}
	return false
}
