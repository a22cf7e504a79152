package testsupport

import (
	"context"
	"testing"

	"notionbrainz/internal/config"
	"notionbrainz/internal/history"
)

// MustOpenHistory opens the run ledger for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRun records a finished run with the given outcomes.
func SeedRun(t testing.TB, store *history.Store, run history.Run, outcomes ...history.Outcome) {
	t.Helper()

	ctx := context.Background()
	if err := store.StartRun(ctx, run); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	var counts history.Counts
	for _, outcome := range outcomes {
		outcome.RunID = run.ID
		if err := store.RecordOutcome(ctx, outcome); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
		counts.Add(outcome.Status)
	}
	if err := store.FinishRun(ctx, run.ID, history.RunCompleted, counts, nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
}
