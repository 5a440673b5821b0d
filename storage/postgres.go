package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEventNotFound indicates the requested rescue event does not exist.
var ErrEventNotFound = errors.New("rescue event not found")

// schema creates the archive table. Loops are stored as JSONB so the
// open pattern-type set survives round-trips unchanged.
const schema = `
CREATE TABLE IF NOT EXISTS ctxrescue_events (
	id UUID PRIMARY KEY,
	goal TEXT NOT NULL,
	blocker TEXT NOT NULL,
	loops JSONB NOT NULL DEFAULT '[]',
	total_loops INT NOT NULL DEFAULT 0,
	original_count INT NOT NULL DEFAULT 0,
	sanitized_count INT NOT NULL DEFAULT 0,
	reduction_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
	package_path TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_ctxrescue_events_created_at
	ON ctxrescue_events (created_at DESC);
`

// PostgresStore implements Store using PostgreSQL with pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate rescue event schema: %w", err)
	}
	return nil
}

// SaveEvent persists a rescue event and returns its assigned ID.
func (s *PostgresStore) SaveEvent(ctx context.Context, event *RescueEvent) (uuid.UUID, error) {
	id := event.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	loopsJSON, err := json.Marshal(event.Loops)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal loops: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO ctxrescue_events
			(id, goal, blocker, loops, total_loops, original_count, sanitized_count, reduction_percent, package_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, event.Goal, event.Blocker, loopsJSON, event.TotalLoops,
		event.OriginalCount, event.SanitizedCount, event.ReductionPercent, event.PackagePath,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert rescue event: %w", err)
	}
	return id, nil
}

// GetEvent fetches a single rescue event.
func (s *PostgresStore) GetEvent(ctx context.Context, id uuid.UUID) (*RescueEvent, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, goal, blocker, loops, total_loops, original_count, sanitized_count,
		       reduction_percent, package_path, created_at
		FROM ctxrescue_events WHERE id = $1`, id)

	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return event, err
}

// ListEvents returns the most recent events, newest first.
func (s *PostgresStore) ListEvents(ctx context.Context, limit int) ([]*RescueEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, goal, blocker, loops, total_loops, original_count, sanitized_count,
		       reduction_percent, package_path, created_at
		FROM ctxrescue_events ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rescue events: %w", err)
	}
	defer rows.Close()

	var events []*RescueEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (*RescueEvent, error) {
	var event RescueEvent
	var loopsJSON []byte

	err := row.Scan(&event.ID, &event.Goal, &event.Blocker, &loopsJSON, &event.TotalLoops,
		&event.OriginalCount, &event.SanitizedCount, &event.ReductionPercent,
		&event.PackagePath, &event.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(loopsJSON) > 0 {
		if err := json.Unmarshal(loopsJSON, &event.Loops); err != nil {
			return nil, fmt.Errorf("unmarshal loops: %w", err)
		}
	}

	return &event, nil
}
