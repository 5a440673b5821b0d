package sanitize

import (
	"testing"

	"github.com/ctxrescue/ctxrescue/types"
)

func TestComputeStats(t *testing.T) {
	removedErr := assistant("Error: handshake timeout talking to the broker")
	removedApology := assistant("Sorry, I picked the wrong port in the last snippet")
	removedCode := assistant("```\nretry := backoff.New()\n```")
	kept := []*types.Message{
		user("get the consumer reconnect loop to settle down after a broker restart"),
		assistant("The consumer now backs off exponentially and reconnects cleanly."),
	}
	original := []*types.Message{kept[0], removedErr, removedApology, removedCode, kept[1]}

	stats := ComputeStats(original, kept)

	if stats.TotalRemoved != 3 {
		t.Errorf("TotalRemoved = %d, want 3", stats.TotalRemoved)
	}
	if stats.OriginalCount != 5 || stats.SanitizedCount != 2 {
		t.Errorf("counts = %d/%d, want 5/2", stats.OriginalCount, stats.SanitizedCount)
	}
	if stats.ErrorsRemoved != 1 {
		t.Errorf("ErrorsRemoved = %d, want 1", stats.ErrorsRemoved)
	}
	if stats.ApologiesRemoved != 1 {
		t.Errorf("ApologiesRemoved = %d, want 1", stats.ApologiesRemoved)
	}
	if stats.CodeBlocksRemoved != 1 {
		t.Errorf("CodeBlocksRemoved = %d, want 1", stats.CodeBlocksRemoved)
	}
	if stats.ReductionPercent != 60.0 {
		t.Errorf("ReductionPercent = %v, want 60.0", stats.ReductionPercent)
	}
}

func TestComputeStatsIdentityNotContent(t *testing.T) {
	// Two distinct messages with identical text. Only one is kept;
	// removal must be charged to the other, not decided by content.
	a := assistant("Error: same text either way, different message identity")
	b := assistant("Error: same text either way, different message identity")
	original := []*types.Message{a, b}
	sanitized := []*types.Message{a}

	stats := ComputeStats(original, sanitized)
	if stats.TotalRemoved != 1 {
		t.Errorf("TotalRemoved = %d, want 1", stats.TotalRemoved)
	}
	if stats.ErrorsRemoved != 1 {
		t.Errorf("ErrorsRemoved = %d, want 1", stats.ErrorsRemoved)
	}
	if stats.ReductionPercent != 50.0 {
		t.Errorf("ReductionPercent = %v, want 50.0", stats.ReductionPercent)
	}
}

func TestComputeStatsRounding(t *testing.T) {
	// 1 of 3 removed: 33.333...% rounds to 33.3.
	messages := []*types.Message{
		user("one message kept in place"),
		user("another message kept in place"),
		user("the message that gets removed"),
	}
	stats := ComputeStats(messages, messages[:2])
	if stats.ReductionPercent != 33.3 {
		t.Errorf("ReductionPercent = %v, want 33.3", stats.ReductionPercent)
	}

	// 2 of 3 removed: 66.666...% rounds to 66.7.
	stats = ComputeStats(messages, messages[:1])
	if stats.ReductionPercent != 66.7 {
		t.Errorf("ReductionPercent = %v, want 66.7", stats.ReductionPercent)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil)
	if stats.TotalRemoved != 0 || stats.OriginalCount != 0 || stats.SanitizedCount != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ReductionPercent != 0 {
		t.Errorf("ReductionPercent = %v, want 0 for empty original", stats.ReductionPercent)
	}
}

func TestComputeStatsNothingRemoved(t *testing.T) {
	messages := []*types.Message{
		user("nothing in this conversation needs to go anywhere at all"),
		assistant("Agreed, the whole exchange is worth keeping as written."),
	}
	stats := ComputeStats(messages, messages)
	if stats.TotalRemoved != 0 {
		t.Errorf("TotalRemoved = %d, want 0", stats.TotalRemoved)
	}
	if stats.ReductionPercent != 0 {
		t.Errorf("ReductionPercent = %v, want 0", stats.ReductionPercent)
	}
}

func TestComputeStatsOverlappingCategories(t *testing.T) {
	// One removed message that is error, apology, and code all at once
	// counts once in each category.
	combo := assistant("Sorry, same Error: again\n```\nretry()\n```")
	original := []*types.Message{user("keep this long enough to not matter here"), combo}
	stats := ComputeStats(original, original[:1])

	if stats.ErrorsRemoved != 1 || stats.ApologiesRemoved != 1 || stats.CodeBlocksRemoved != 1 {
		t.Errorf("category counts = %d/%d/%d, want 1/1/1",
			stats.ErrorsRemoved, stats.ApologiesRemoved, stats.CodeBlocksRemoved)
	}
	if stats.TotalRemoved != 1 {
		t.Errorf("TotalRemoved = %d, want 1", stats.TotalRemoved)
	}
}
