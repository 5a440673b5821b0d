package types

import (
	"strings"
	"testing"
)

func TestLoopPatternString(t *testing.T) {
	p := LoopPattern{
		Type:        PatternRepetitiveError,
		Occurrences: 4,
		Description: "Same error repeated 4 times",
	}
	if got := p.String(); got != "repetitive_error (x4): Same error repeated 4 times" {
		t.Errorf("String() = %q", got)
	}
}

func TestTotalLoops(t *testing.T) {
	a := &Analysis{LoopsDetected: []LoopPattern{
		{Type: PatternRepetitiveError, Occurrences: 4},
		{Type: PatternApologyCascade, Occurrences: 3},
	}}
	if got := a.TotalLoops(); got != 7 {
		t.Errorf("TotalLoops() = %d, want 7", got)
	}

	empty := &Analysis{}
	if got := empty.TotalLoops(); got != 0 {
		t.Errorf("TotalLoops() = %d, want 0", got)
	}
}

func TestSummary(t *testing.T) {
	a := &Analysis{
		Goal:        "ship the importer",
		Blocker:     "constraint violation",
		KeyInsights: []string{"staging table was dirty"},
		LoopsDetected: []LoopPattern{
			{Type: PatternRepetitiveError, Occurrences: 4},
		},
	}
	s := a.Summary()
	for _, want := range []string{
		"Goal: ship the importer",
		"Blocker: constraint violation",
		"1 patterns, 4 total occurrences",
		"Key insights: 1",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() missing %q in %q", want, s)
		}
	}
}
