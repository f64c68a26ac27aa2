package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"habit-coach/internal/database"
	"habit-coach/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics_test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	store := newTestStore(t)
	runID := "run-1"

	t.Run("Record", func(t *testing.T) {
		calls := []ProviderCall{
			{RunID: runID, Provider: "openweathermap", Operation: "current_weather", StatusCode: 0, OK: true, LatencyMS: 120},
			{RunID: runID, Provider: "youtube", Operation: "search", StatusCode: 403, OK: false, LatencyMS: 80},
			{RunID: runID, Provider: "openai", Operation: "report", OK: true, LatencyMS: 2400, PromptTokens: 500, CompletionTokens: 200, Model: "gpt-5-mini"},
		}
		for _, c := range calls {
			if err := store.Record(c); err != nil {
				t.Fatalf("Failed to record %s call: %v", c.Provider, err)
			}
		}
	})

	t.Run("RecordMeta", func(t *testing.T) {
		err := store.RecordMeta("run-2", shared.CallMeta{
			Provider:  "dogceo",
			Operation: "random_image",
			OK:        true,
			Latency:   95 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("Failed to record meta: %v", err)
		}
	})

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(7)
		if err != nil {
			t.Fatalf("Failed to get usage: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected one day of usage, got %d", len(usage))
		}
		day := usage[0]
		if day.Calls != 4 {
			t.Errorf("Calls = %d, want 4", day.Calls)
		}
		if day.Failures != 1 {
			t.Errorf("Failures = %d, want 1", day.Failures)
		}
		if day.TotalPrompt != 500 || day.TotalCompletion != 200 {
			t.Errorf("Token totals = %d/%d, want 500/200", day.TotalPrompt, day.TotalCompletion)
		}
		if day.AvgLatencyMS <= 0 {
			t.Errorf("AvgLatencyMS = %f, want positive", day.AvgLatencyMS)
		}
	})

	t.Run("CleanupKeepsRecent", func(t *testing.T) {
		deleted, err := store.Cleanup(30)
		if err != nil {
			t.Fatalf("Failed to cleanup: %v", err)
		}
		if deleted != 0 {
			t.Errorf("Deleted %d rows, want 0", deleted)
		}
	})

	t.Run("CleanupRemovesOld", func(t *testing.T) {
		old := ProviderCall{
			RunID:     "run-old",
			Provider:  "openweathermap",
			Operation: "current_weather",
			OK:        true,
			Timestamp: time.Now().UTC().AddDate(0, 0, -60),
		}
		if err := store.Record(old); err != nil {
			t.Fatalf("Failed to record old call: %v", err)
		}

		deleted, err := store.Cleanup(30)
		if err != nil {
			t.Fatalf("Failed to cleanup: %v", err)
		}
		if deleted != 1 {
			t.Errorf("Deleted %d rows, want 1", deleted)
		}
	})
}
