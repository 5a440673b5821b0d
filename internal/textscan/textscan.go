// Package textscan provides the shared text heuristics used by the
// analyzers and the sanitizer: fenced code-block extraction, error and
// apology indicator tests, and error signatures.
//
// The heuristics are intentionally coarse and explainable. Signatures are
// exact-match lowercased prefixes, not fuzzy matches: two errors that
// diverge after the truncation point still collide deterministically.
package textscan

import "strings"

// errorIndicators marks a message as error-bearing when any of them
// appears in the lowercased content.
var errorIndicators = []string{
	"error:", "exception:", "traceback",
	"failed", "cannot", "undefined",
	"null pointer", "segmentation fault",
}

// apologyPhrases marks a message as an apology when any of them appears
// in the lowercased content.
var apologyPhrases = []string{
	"i apologize", "sorry", "my apologies",
	"i was wrong", "let me correct",
}

// progressIndicators flag breakthrough moments worth preserving.
var progressIndicators = []string{
	"solved", "fixed", "working", "success",
	"found the issue", "figured out", "realized",
}

// signatureLen is the prefix length used for error signatures.
const signatureLen = 100

// IsError reports whether the content contains an error indicator.
func IsError(content string) bool {
	return containsAny(strings.ToLower(content), errorIndicators)
}

// IsApology reports whether the content contains an apology phrase.
// Role is deliberately not checked here; the apology-cascade detector
// layers the assistant-role requirement on top.
func IsApology(content string) bool {
	return containsAny(strings.ToLower(content), apologyPhrases)
}

// HasProgress reports whether the content contains a progress indicator.
func HasProgress(content string) bool {
	return containsAny(strings.ToLower(content), progressIndicators)
}

// FirstProgressSentence returns the first '.'-separated sentence of
// content that contains a progress indicator, trimmed, or "" if none.
func FirstProgressSentence(content string) string {
	for _, sentence := range strings.Split(content, ".") {
		if containsAny(strings.ToLower(sentence), progressIndicators) {
			return strings.TrimSpace(sentence)
		}
	}
	return ""
}

// ErrorSignature returns the coarse deduplication key for an
// error-bearing message: the lowercased first 100 characters of content.
func ErrorSignature(content string) string {
	if len(content) > signatureLen {
		content = content[:signatureLen]
	}
	return strings.ToLower(content)
}

// ExtractCodeBlocks returns the contents of all explicitly closed fenced
// code blocks in conversation order. A line whose trimmed form starts
// with ``` toggles the in-block state; fence lines themselves are not
// part of the block. An unterminated trailing block is dropped.
func ExtractCodeBlocks(content string) []string {
	var blocks []string
	var current []string
	inBlock := false

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			inBlock = !inBlock
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}

	return blocks
}

// Truncate shortens s to at most max characters, appending an ellipsis
// when anything was cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func containsAny(lowered string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(lowered, needle) {
			return true
		}
	}
	return false
}
