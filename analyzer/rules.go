package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ctxrescue/ctxrescue/internal/textscan"
	"github.com/ctxrescue/ctxrescue/types"
)

// Default detection thresholds.
const (
	// DefaultErrorThreshold is the number of identical error signatures
	// required before a repetitive_error pattern is reported.
	DefaultErrorThreshold = 3

	// DefaultApologyThreshold is the number of assistant apologies
	// required before an apology_cascade pattern is reported.
	DefaultApologyThreshold = 3
)

// codeChurnMinCluster is the smallest similar-block cluster reported as churn.
const codeChurnMinCluster = 3

// Rules is the heuristic analyzer. No API calls: free, fast, and
// privacy-preserving. Good for basic loop detection and conversation
// cleanup without sending data to external services.
type Rules struct {
	errorThreshold   int
	apologyThreshold int
}

// NewRules creates a rule-based analyzer. Non-positive thresholds fall
// back to the defaults.
func NewRules(errorThreshold, apologyThreshold int) *Rules {
	if errorThreshold <= 0 {
		errorThreshold = DefaultErrorThreshold
	}
	if apologyThreshold <= 0 {
		apologyThreshold = DefaultApologyThreshold
	}
	return &Rules{
		errorThreshold:   errorThreshold,
		apologyThreshold: apologyThreshold,
	}
}

// AnalyzeConversation runs all detectors over the message sequence and
// assembles the Analysis. It is total over its domain: the empty
// sequence yields sentinel fields and no patterns.
func (r *Rules) AnalyzeConversation(_ context.Context, messages []*types.Message) (*types.Analysis, error) {
	var loops []types.LoopPattern
	loops = append(loops, r.detectRepetitiveErrors(messages)...)
	loops = append(loops, r.detectApologyCascade(messages)...)
	loops = append(loops, r.detectCodeChurn(messages)...)

	return &types.Analysis{
		Goal:             extractGoal(messages),
		Blocker:          identifyBlocker(messages, loops),
		CurrentState:     extractCurrentState(messages),
		KeyInsights:      extractInsights(messages, loops),
		LoopsDetected:    loops,
		RecommendedSteps: generateRecommendations(loops),
	}, nil
}

// detectRepetitiveErrors groups error-bearing messages by signature and
// reports every signature that recurs at least errorThreshold times.
// Patterns are emitted in order of each signature's first occurrence.
func (r *Rules) detectRepetitiveErrors(messages []*types.Message) []types.LoopPattern {
	type occurrence struct {
		index int
		sig   string
	}
	var errorMessages []occurrence
	for i, msg := range messages {
		if textscan.IsError(msg.Content) {
			errorMessages = append(errorMessages, occurrence{i, textscan.ErrorSignature(msg.Content)})
		}
	}

	counts := make(map[string]int)
	var order []string
	for _, occ := range errorMessages {
		if counts[occ.sig] == 0 {
			order = append(order, occ.sig)
		}
		counts[occ.sig]++
	}

	var loops []types.LoopPattern
	for _, sig := range order {
		count := counts[sig]
		if count < r.errorThreshold {
			continue
		}
		first, last := -1, -1
		for _, occ := range errorMessages {
			if occ.sig != sig {
				continue
			}
			if first < 0 {
				first = occ.index
			}
			last = occ.index
		}
		loops = append(loops, types.LoopPattern{
			Type:        types.PatternRepetitiveError,
			Occurrences: count,
			FirstIndex:  first,
			LastIndex:   last,
			Description: fmt.Sprintf("Same error repeated %d times: %.50s...", count, sig),
		})
	}
	return loops
}

// detectApologyCascade counts assistant apologies across the whole
// conversation (not windowed) and reports at most one pattern spanning
// the first and last apology.
func (r *Rules) detectApologyCascade(messages []*types.Message) []types.LoopPattern {
	var indices []int
	for i, msg := range messages {
		if msg.Role == types.RoleAssistant && textscan.IsApology(msg.Content) {
			indices = append(indices, i)
		}
	}

	if len(indices) < r.apologyThreshold {
		return nil
	}
	return []types.LoopPattern{{
		Type:        types.PatternApologyCascade,
		Occurrences: len(indices),
		FirstIndex:  indices[0],
		LastIndex:   indices[len(indices)-1],
		Description: fmt.Sprintf("Model apologized %d times without making progress", len(indices)),
	}}
}

// detectCodeChurn clusters fenced code blocks by length similarity.
// Clustering is greedy and single-pass: a block joins the first cluster
// it matches and is never reconsidered.
func (r *Rules) detectCodeChurn(messages []*types.Message) []types.LoopPattern {
	type codeBlock struct {
		msgIndex int
		text     string
	}
	var blocks []codeBlock
	for i, msg := range messages {
		for _, block := range textscan.ExtractCodeBlocks(msg.Content) {
			blocks = append(blocks, codeBlock{i, block})
		}
	}

	var loops []types.LoopPattern
	consumed := make([]bool, len(blocks))

	for i, anchor := range blocks {
		if consumed[i] {
			continue
		}
		cluster := []int{anchor.msgIndex}
		for j := i + 1; j < len(blocks); j++ {
			if consumed[j] {
				continue
			}
			if similarLength(anchor.text, blocks[j].text) {
				cluster = append(cluster, blocks[j].msgIndex)
				consumed[j] = true
			}
		}
		if len(cluster) >= codeChurnMinCluster {
			loops = append(loops, types.LoopPattern{
				Type:        types.PatternCodeChurn,
				Occurrences: len(cluster),
				FirstIndex:  cluster[0],
				LastIndex:   cluster[len(cluster)-1],
				Description: fmt.Sprintf("Similar code repeated %d times with minor variations", len(cluster)),
			})
		}
	}
	return loops
}

// similarLength reports whether b's length is within 10% of a's.
// The ratio is defined as 0 when the reference block is empty.
func similarLength(a, b string) bool {
	if len(a) == 0 {
		return false
	}
	ratio := float64(len(b)) / float64(len(a))
	return ratio >= 0.9 && ratio <= 1.1
}

// extractGoal takes the first line of the first substantial user message.
func extractGoal(messages []*types.Message) string {
	for _, msg := range messages {
		if msg.Role == types.RoleUser && len(msg.Content) > 50 {
			firstLine, _, _ := strings.Cut(msg.Content, "\n")
			return textscan.Truncate(firstLine, 200)
		}
	}
	return GoalNotIdentified
}

// blockerKeywords are the line-level matches used during the recent-error
// lookback. Narrower than the full error-indicator set on purpose: only
// lines naming the failure are useful as a blocker summary.
var blockerKeywords = []string{"error", "exception", "failed"}

// identifyBlocker picks the blocking issue in priority order: the most
// repeated error pattern, then a recent error line, then the apology
// cascade, then a sentinel.
func identifyBlocker(messages []*types.Message, loops []types.LoopPattern) string {
	var mostRepeated *types.LoopPattern
	for i := range loops {
		if loops[i].Type != types.PatternRepetitiveError {
			continue
		}
		if mostRepeated == nil || loops[i].Occurrences > mostRepeated.Occurrences {
			mostRepeated = &loops[i]
		}
	}
	if mostRepeated != nil {
		return mostRepeated.Description
	}

	// Scan the last 10 messages, most recent first.
	start := len(messages) - 10
	if start < 0 {
		start = 0
	}
	for i := len(messages) - 1; i >= start; i-- {
		if !textscan.IsError(messages[i].Content) {
			continue
		}
		for _, line := range strings.Split(messages[i].Content, "\n") {
			lowered := strings.ToLower(line)
			for _, kw := range blockerKeywords {
				if strings.Contains(lowered, kw) {
					return clip(strings.TrimSpace(line), 200)
				}
			}
		}
	}

	for _, loop := range loops {
		if loop.Type == types.PatternApologyCascade {
			return BlockerStuck
		}
	}
	return BlockerNotIdentified
}

// extractCurrentState returns the most recent substantial code block,
// wrapped in fences, or a truncated view of the last message.
func extractCurrentState(messages []*types.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, block := range textscan.ExtractCodeBlocks(messages[i].Content) {
			if len(block) > 50 {
				return "```\n" + block + "\n```"
			}
		}
	}

	if len(messages) > 0 {
		return textscan.Truncate(messages[len(messages)-1].Content, 300)
	}
	return StateUnclear
}

// maxInsights caps the number of extracted insights.
const maxInsights = 5

// extractInsights collects breakthrough sentences from messages outside
// every detected loop range, in discovery order.
func extractInsights(messages []*types.Message, loops []types.LoopPattern) []string {
	loopIndices := make(map[int]bool)
	for _, loop := range loops {
		for i := loop.FirstIndex; i <= loop.LastIndex; i++ {
			loopIndices[i] = true
		}
	}

	var insights []string
	for i, msg := range messages {
		if loopIndices[i] {
			continue
		}
		if !textscan.HasProgress(msg.Content) {
			continue
		}
		if insight := clip(textscan.FirstProgressSentence(msg.Content), 150); insight != "" {
			insights = append(insights, insight)
		}
	}

	if len(insights) == 0 {
		return []string{NoBreakthroughs}
	}
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// generateRecommendations maps detected pattern types to fixed
// suggestions, in a fixed order, always closing with the documentation
// step.
func generateRecommendations(loops []types.LoopPattern) []string {
	has := make(map[types.PatternType]bool)
	for _, loop := range loops {
		has[loop.Type] = true
	}

	var recs []string
	if has[types.PatternRepetitiveError] {
		recs = append(recs, "Try a completely different approach - the current method has failed multiple times")
	}
	if has[types.PatternApologyCascade] {
		recs = append(recs, "Provide more context or constraints to break out of the current pattern")
	}
	if has[types.PatternCodeChurn] {
		recs = append(recs, "Step back and reconsider the architecture rather than making incremental tweaks")
	}
	if len(recs) == 0 {
		recs = append(recs, "Review the original goal and verify assumptions")
	}
	recs = append(recs, "Consider consulting documentation or external resources")
	return recs
}

// clip hard-truncates s to max characters with no ellipsis.
func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
