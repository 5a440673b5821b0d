package rescue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctxrescue/ctxrescue/sanitize"
	"github.com/ctxrescue/ctxrescue/types"
)

func sampleAnalysis() *types.Analysis {
	return &types.Analysis{
		Goal:         "Build a rate limiter for the public API",
		Blocker:      "Token bucket refill math is off by one",
		CurrentState: "```\nfunc refill() {}\n```",
		KeyInsights:  []string{"Refill interval must be measured from the last grant"},
		LoopsDetected: []types.LoopPattern{{
			Type:        types.PatternRepetitiveError,
			Occurrences: 4,
			FirstIndex:  2,
			LastIndex:   9,
			Description: "Same off-by-one failure on refill",
		}},
		RecommendedSteps: []string{
			"Write a table test around the refill boundary",
			"Replace wall clock reads with a monotonic source",
		},
	}
}

func sampleMessages() []*types.Message {
	return []*types.Message{
		types.NewUserMessage("build me a rate limiter that holds up under bursty traffic"),
		types.NewAssistantMessage("Starting from a token bucket with a monotonic refill clock."),
	}
}

func sampleStats() *sanitize.RemovalStats {
	return &sanitize.RemovalStats{
		TotalRemoved:     6,
		ErrorsRemoved:    4,
		OriginalCount:    10,
		SanitizedCount:   4,
		ReductionPercent: 60.0,
	}
}

func TestGenerate(t *testing.T) {
	g, err := NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	out, err := g.Generate(sampleAnalysis(), sampleMessages(), sampleStats())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, want := range []string{
		"# Context Rescue Package",
		"## Original Goal",
		"Build a rate limiter for the public API",
		"## Current Blocker",
		"Token bucket refill math is off by one",
		"## Current State",
		"## Key Insights",
		"- Refill interval must be measured from the last grant",
		"## Detected Loops",
		"**repetitive_error** (x4): Same off-by-one failure on refill",
		"## Recommended Next Steps",
		"1. Write a table test around the refill boundary",
		"2. Replace wall clock reads with a monotonic source",
		"## Cleanup Summary",
		"Removed: 6 (60% reduction)",
		"## Cleaned Conversation",
		"**User:** build me a rate limiter",
		"**Assistant:** Starting from a token bucket",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateOmitsEmptySections(t *testing.T) {
	g, err := NewGenerator()
	if err != nil {
		t.Fatal(err)
	}

	analysis := &types.Analysis{
		Goal:    "Goal not clearly identified from conversation",
		Blocker: "Blocker not clearly identified",
	}
	out, err := g.Generate(analysis, nil, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, absent := range []string{
		"## Current State",
		"## Key Insights",
		"## Detected Loops",
		"## Recommended Next Steps",
		"## Cleanup Summary",
	} {
		if strings.Contains(out, absent) {
			t.Errorf("output contains %q for an empty analysis", absent)
		}
	}
	if !strings.Contains(out, "## Cleaned Conversation") {
		t.Error("conversation section must always be present")
	}
}

func TestWriteFile(t *testing.T) {
	g, err := NewGenerator()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "nested", "out", "package.md")
	if err := g.WriteFile(path, sampleAnalysis(), sampleMessages(), sampleStats()); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(content), "# Context Rescue Package") {
		t.Error("written file missing header")
	}
}

func TestFilename(t *testing.T) {
	name := Filename("rescue")
	if !strings.HasPrefix(name, "rescue_") || !strings.HasSuffix(name, ".md") {
		t.Errorf("Filename() = %q", name)
	}
	if got := Filename(""); !strings.HasPrefix(got, "rescue_") {
		t.Errorf("empty base should default, got %q", got)
	}
}

func TestHTML(t *testing.T) {
	g, err := NewGenerator()
	if err != nil {
		t.Fatal(err)
	}
	markdown, err := g.Generate(sampleAnalysis(), sampleMessages(), sampleStats())
	if err != nil {
		t.Fatal(err)
	}

	html, err := HTML(markdown)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(html, "<h1>") {
		t.Error("expected rendered heading")
	}
	if !strings.Contains(html, "Build a rate limiter for the public API") {
		t.Error("expected goal text in HTML output")
	}
}

func TestHTMLStripsScripts(t *testing.T) {
	html, err := HTML("hello <script>alert(1)</script> world")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("script tag survived sanitization")
	}
	if !strings.Contains(html, "hello") {
		t.Error("benign content was dropped")
	}
}
