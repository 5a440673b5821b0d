package sanitize

import (
	"math"

	"github.com/google/uuid"

	"github.com/ctxrescue/ctxrescue/internal/textscan"
	"github.com/ctxrescue/ctxrescue/types"
)

// RemovalStats reports what sanitization removed. The category counts
// are independent and non-exclusive: one removed message can be
// error-bearing, apology-bearing, and code-bearing at once.
type RemovalStats struct {
	TotalRemoved      int     `json:"total_removed"`
	ErrorsRemoved     int     `json:"errors_removed"`
	ApologiesRemoved  int     `json:"apologies_removed"`
	CodeBlocksRemoved int     `json:"code_blocks_removed"`
	OriginalCount     int     `json:"original_count"`
	SanitizedCount    int     `json:"sanitized_count"`
	ReductionPercent  float64 `json:"reduction_percent"`
}

// ComputeStats compares the original sequence against a sanitized view
// of it. Membership is decided by message identity (ID), never by
// content equality: two distinct messages may carry identical text.
//
// The sanitized argument must be a subset of original with order
// preserved; the computation is pure and deterministic.
func ComputeStats(original, sanitized []*types.Message) RemovalStats {
	kept := make(map[uuid.UUID]bool, len(sanitized))
	for _, msg := range sanitized {
		kept[msg.ID] = true
	}

	stats := RemovalStats{
		TotalRemoved:   len(original) - len(sanitized),
		OriginalCount:  len(original),
		SanitizedCount: len(sanitized),
	}

	for _, msg := range original {
		if kept[msg.ID] {
			continue
		}
		if textscan.IsError(msg.Content) {
			stats.ErrorsRemoved++
		}
		if textscan.IsApology(msg.Content) {
			stats.ApologiesRemoved++
		}
		if len(textscan.ExtractCodeBlocks(msg.Content)) > 0 {
			stats.CodeBlocksRemoved++
		}
	}

	if len(original) > 0 {
		ratio := float64(stats.TotalRemoved) / float64(len(original)) * 100
		stats.ReductionPercent = math.Round(ratio*10) / 10
	}

	return stats
}
