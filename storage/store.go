// Package storage provides an optional PostgreSQL archive for rescue
// events: what was analyzed, what was detected, and how much was
// removed. The core pipeline never touches storage; the CLI (or any
// embedding application) records events after a rescue completes.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ctxrescue/ctxrescue/types"
)

// RescueEvent is one archived rescue operation.
type RescueEvent struct {
	ID               uuid.UUID           `json:"id"`
	Goal             string              `json:"goal"`
	Blocker          string              `json:"blocker"`
	Loops            []types.LoopPattern `json:"loops"`
	TotalLoops       int                 `json:"total_loops"`
	OriginalCount    int                 `json:"original_count"`
	SanitizedCount   int                 `json:"sanitized_count"`
	ReductionPercent float64             `json:"reduction_percent"`
	PackagePath      *string             `json:"package_path,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Store defines the archive interface.
type Store interface {
	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error

	// SaveEvent persists a rescue event and returns its assigned ID.
	SaveEvent(ctx context.Context, event *RescueEvent) (uuid.UUID, error)

	// GetEvent fetches a single rescue event.
	GetEvent(ctx context.Context, id uuid.UUID) (*RescueEvent, error)

	// ListEvents returns the most recent events, newest first.
	ListEvents(ctx context.Context, limit int) ([]*RescueEvent, error)
}
