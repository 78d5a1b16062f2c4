package runstore

import (
	"context"
	"testing"
)

func TestMemoryRunStore_SaveAndGet(t *testing.T) {
	store := NewMemoryRunStore()
	run := &RunSummary{RunID: "run-1", MakespanMinutes: 65, DeliveredCount: 1}

	if err := store.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := store.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.MakespanMinutes != 65 {
		t.Errorf("MakespanMinutes = %d, want 65", got.MakespanMinutes)
	}
}

func TestMemoryRunStore_GetMissing(t *testing.T) {
	store := NewMemoryRunStore()
	if _, err := store.GetRun(context.Background(), "nonexistent"); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestMemoryRunStore_ListRuns(t *testing.T) {
	store := NewMemoryRunStore()
	_ = store.SaveRun(context.Background(), &RunSummary{RunID: "run-1"})
	_ = store.SaveRun(context.Background(), &RunSummary{RunID: "run-2"})

	runs, err := store.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
}
