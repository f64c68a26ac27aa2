package habit

import (
	"fmt"
	"testing"
	"time"
)

func TestComputeRate(t *testing.T) {
	cases := []struct {
		completed int
		want      float64
	}{
		{0, 0.0},
		{1, 20.0},
		{2, 40.0},
		{3, 60.0},
		{4, 80.0},
		{5, 100.0},
	}
	for _, c := range cases {
		if got := ComputeRate(c.completed, 5); got != c.want {
			t.Errorf("ComputeRate(%d, 5) = %v, want %v", c.completed, got, c.want)
		}
	}
}

func TestComputeRateRounding(t *testing.T) {
	// 1/3 -> 33.333... -> 33.3
	if got := ComputeRate(1, 3); got != 33.3 {
		t.Errorf("ComputeRate(1, 3) = %v, want 33.3", got)
	}
}

func TestCountCompleted(t *testing.T) {
	checked := map[string]bool{
		"기상 미션": true,
		"물 마시기": true,
		"공부/독서": false,
		"수면":    true,
		"없는 습관": true, // not in the set, must not count
	}
	if got := CountCompleted(checked); got != 3 {
		t.Errorf("CountCompleted = %d, want 3", got)
	}
}

func TestUpsertTodayOverwrites(t *testing.T) {
	l := NewLedger()
	l.UpsertToday(Entry{Date: "2026-08-31", Achieved: 3, Rate: 60.0, Mood: 6})
	l.UpsertToday(Entry{Date: "2026-08-31", Achieved: 5, Rate: 100.0, Mood: 8})

	if l.Len() != 1 {
		t.Fatalf("Expected 1 entry after double upsert, got %d", l.Len())
	}
	got := l.Entries()[0]
	if got.Achieved != 5 || got.Rate != 100.0 || got.Mood != 8 {
		t.Errorf("Second upsert values not kept: %+v", got)
	}
}

func TestUpsertTodayRetention(t *testing.T) {
	l := NewLedger()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		d := base.AddDate(0, 0, i).Format(DateFormat)
		l.UpsertToday(Entry{Date: d, Achieved: i % 6, Rate: ComputeRate(i%6, 5), Mood: 5})
	}

	if l.Len() != RetentionDays {
		t.Fatalf("Expected %d entries after 30 upserts, got %d", RetentionDays, l.Len())
	}

	entries := l.Entries()
	seen := make(map[string]bool)
	for i, e := range entries {
		if seen[e.Date] {
			t.Errorf("Duplicate date %s in ledger", e.Date)
		}
		seen[e.Date] = true
		if i > 0 && entries[i-1].Date >= e.Date {
			t.Errorf("Entries not sorted ascending: %s before %s", entries[i-1].Date, e.Date)
		}
	}
	// The most recent date survives truncation.
	if entries[len(entries)-1].Date != "2026-08-30" {
		t.Errorf("Expected newest entry 2026-08-30, got %s", entries[len(entries)-1].Date)
	}
}

func TestRecentWindowExcludesToday(t *testing.T) {
	l := NewLedger()
	for i := 1; i <= 10; i++ {
		l.UpsertToday(Entry{Date: fmt.Sprintf("2026-08-%02d", i), Achieved: 2, Rate: 40.0, Mood: 5})
	}
	today := "2026-08-10"

	window := l.RecentWindow(6, today)
	if len(window) != 6 {
		t.Fatalf("Expected 6 entries, got %d", len(window))
	}
	for _, e := range window {
		if e.Date == today {
			t.Errorf("Window must not contain the excluded date %s", today)
		}
	}
	if window[len(window)-1].Date != "2026-08-09" {
		t.Errorf("Expected window to end at 2026-08-09, got %s", window[len(window)-1].Date)
	}
}

func TestRecentWindowSmallLedger(t *testing.T) {
	l := NewLedger()
	l.UpsertToday(Entry{Date: "2026-08-01"})

	if got := l.RecentWindow(6, "2026-08-02"); len(got) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(got))
	}
	if got := l.RecentWindow(6, "2026-08-01"); len(got) != 0 {
		t.Errorf("Expected empty window when the only entry is excluded, got %d", len(got))
	}
}

func TestSeedDemo(t *testing.T) {
	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	l := SeedDemo(today)

	entries := l.Entries()
	if len(entries) != 6 {
		t.Fatalf("Expected 6 demo entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Date == "2026-08-31" {
			t.Error("Demo seed must not contain today")
		}
		if e.Achieved < 0 || e.Achieved > 5 {
			t.Errorf("Achieved out of range: %d", e.Achieved)
		}
		if e.Mood < 1 || e.Mood > 10 {
			t.Errorf("Mood out of range: %d", e.Mood)
		}
		if want := ComputeRate(e.Achieved, 5); e.Rate != want {
			t.Errorf("Rate %v does not match achieved %d (want %v)", e.Rate, e.Achieved, want)
		}
	}
	if entries[0].Date != "2026-08-25" {
		t.Errorf("Expected oldest demo entry 2026-08-25, got %s", entries[0].Date)
	}
}

func TestSeedDemoAheadOfUTC(t *testing.T) {
	// Early morning in a zone ahead of UTC: the calendar day there is already
	// 2026-08-31 even though UTC is still on 2026-08-30.
	kst := time.FixedZone("KST", 9*60*60)
	today := time.Date(2026, 8, 31, 5, 0, 0, 0, kst)

	entries := SeedDemo(today).Entries()
	if len(entries) != 6 {
		t.Fatalf("Expected 6 demo entries, got %d", len(entries))
	}
	if entries[0].Date != "2026-08-25" {
		t.Errorf("Expected oldest demo entry 2026-08-25, got %s", entries[0].Date)
	}
	if newest := entries[len(entries)-1].Date; newest != "2026-08-30" {
		t.Errorf("Expected newest demo entry 2026-08-30, got %s", newest)
	}
}
