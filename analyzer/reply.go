package analyzer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ctxrescue/ctxrescue/types"
)

// ParseReply converts a sectioned model reply into an Analysis.
//
// The parser is tolerant: missing sections fall back to the rule-based
// sentinels, and malformed loop entries degrade to defaults. Loop
// patterns parsed from free text carry no positions (FirstIndex and
// LastIndex are 0), so the sanitizer treats them conservatively.
func ParseReply(reply string) *types.Analysis {
	sections := splitSections(reply)

	goal := strings.TrimSpace(sections["GOAL"])
	if goal == "" {
		goal = GoalNotIdentified
	}
	blocker := strings.TrimSpace(sections["BLOCKER"])
	if blocker == "" {
		blocker = BlockerNotIdentified
	}

	return &types.Analysis{
		Goal:             goal,
		Blocker:          blocker,
		CurrentState:     strings.TrimSpace(sections["CURRENT_STATE"]),
		LoopsDetected:    parseLoops(sections["LOOPS_DETECTED"]),
		KeyInsights:      parseBullets(sections["KEY_INSIGHTS"]),
		RecommendedSteps: parseNumbered(sections["RECOMMENDED_STEPS"]),
	}
}

// splitSections splits the reply on upper-case "HEADER:" lines.
func splitSections(text string) map[string]string {
	sections := make(map[string]string)
	var current string
	var content []string

	flush := func() {
		if current != "" {
			sections[current] = strings.Join(content, "\n")
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") && isUpperHeader(trimmed) {
			flush()
			current = strings.TrimSuffix(trimmed, ":")
			content = nil
			continue
		}
		if current != "" {
			content = append(content, line)
		}
	}
	flush()

	return sections
}

// isUpperHeader reports whether s contains at least one letter and no
// lower-case letters.
func isUpperHeader(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// parseLoops parses "- TYPE: ... / OCCURRENCES: ... / DESCRIPTION: ..."
// entries, separated by blank lines.
func parseLoops(text string) []types.LoopPattern {
	var loops []types.LoopPattern
	current := map[string]string{}

	flush := func() {
		if len(current) == 0 {
			return
		}
		loops = append(loops, loopFromFields(current))
		current = map[string]string{}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		switch {
		case strings.HasPrefix(line, "- TYPE:"):
			current["type"] = strings.TrimSpace(strings.TrimPrefix(line, "- TYPE:"))
		case strings.Contains(line, "OCCURRENCES:"):
			_, after, _ := strings.Cut(line, ":")
			current["occurrences"] = strings.TrimSpace(after)
		case strings.Contains(line, "DESCRIPTION:"):
			_, after, _ := strings.Cut(line, ":")
			current["description"] = strings.TrimSpace(after)
		}
	}
	flush()

	return loops
}

func loopFromFields(fields map[string]string) types.LoopPattern {
	patternType := fields["type"]
	if patternType == "" {
		patternType = "unknown"
	}
	occurrences, err := strconv.Atoi(fields["occurrences"])
	if err != nil || occurrences < 1 {
		occurrences = 1
	}
	description := fields["description"]
	if description == "" {
		description = "No description"
	}
	return types.LoopPattern{
		Type:        types.PatternType(patternType),
		Occurrences: occurrences,
		Description: description,
	}
}

// parseBullets extracts "- item" lines.
func parseBullets(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		item := strings.TrimSpace(strings.TrimLeft(line, "- "))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseNumbered extracts "1. item" lines.
func parseNumbered(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !unicode.IsDigit(rune(line[0])) {
			continue
		}
		item := line
		if _, after, found := strings.Cut(line, "."); found {
			item = strings.TrimSpace(after)
		}
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
