package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ctxrescue/ctxrescue/internal/testutil"
	"github.com/ctxrescue/ctxrescue/types"
)

func setupStore(t *testing.T) (*PostgresStore, context.Context) {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(db.Close)

	ctx := context.Background()
	store := NewPostgresStore(db.Pool)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.CleanTables(ctx); err != nil {
		t.Fatalf("CleanTables() error = %v", err)
	}
	return store, ctx
}

func sampleEvent() *RescueEvent {
	path := "/tmp/rescue_20260823_120000.md"
	return &RescueEvent{
		Goal:    "migrate the importer to batched writes",
		Blocker: "duplicate key violations on retry",
		Loops: []types.LoopPattern{{
			Type:        types.PatternRepetitiveError,
			Occurrences: 4,
			FirstIndex:  2,
			LastIndex:   9,
			Description: "Same constraint violation repeated 4 times",
		}},
		TotalLoops:       4,
		OriginalCount:    12,
		SanitizedCount:   5,
		ReductionPercent: 58.3,
		PackagePath:      &path,
	}
}

func TestSaveAndGetEvent(t *testing.T) {
	store, ctx := setupStore(t)

	id, err := store.SaveEvent(ctx, sampleEvent())
	if err != nil {
		t.Fatalf("SaveEvent() error = %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("SaveEvent() returned nil ID")
	}

	got, err := store.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if got.Goal != "migrate the importer to batched writes" {
		t.Errorf("Goal = %q", got.Goal)
	}
	if len(got.Loops) != 1 || got.Loops[0].Type != types.PatternRepetitiveError {
		t.Errorf("Loops = %#v", got.Loops)
	}
	if got.Loops[0].FirstIndex != 2 || got.Loops[0].LastIndex != 9 {
		t.Errorf("loop range = [%d, %d]", got.Loops[0].FirstIndex, got.Loops[0].LastIndex)
	}
	if got.ReductionPercent != 58.3 {
		t.Errorf("ReductionPercent = %v", got.ReductionPercent)
	}
	if got.PackagePath == nil || *got.PackagePath != "/tmp/rescue_20260823_120000.md" {
		t.Errorf("PackagePath = %v", got.PackagePath)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestGetEventNotFound(t *testing.T) {
	store, ctx := setupStore(t)

	_, err := store.GetEvent(ctx, uuid.New())
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("GetEvent() error = %v, want ErrEventNotFound", err)
	}
}

func TestListEvents(t *testing.T) {
	store, ctx := setupStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.SaveEvent(ctx, sampleEvent()); err != nil {
			t.Fatalf("SaveEvent() error = %v", err)
		}
	}

	events, err := store.ListEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}

	all, err := store.ListEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d events with default limit, want 3", len(all))
	}
}

func TestSaveEventKeepsExplicitID(t *testing.T) {
	store, ctx := setupStore(t)

	event := sampleEvent()
	event.ID = uuid.New()

	id, err := store.SaveEvent(ctx, event)
	if err != nil {
		t.Fatalf("SaveEvent() error = %v", err)
	}
	if id != event.ID {
		t.Errorf("SaveEvent() reassigned an explicit ID: %s != %s", id, event.ID)
	}
}
