package habit

import (
	"sort"
	"time"
)

// RetentionDays is how many distinct dates the ledger keeps.
const RetentionDays = 14

// DateFormat is the ISO calendar-day key used for ledger dates.
// Lexicographic order of these strings is chronological order.
const DateFormat = "2006-01-02"

// Entry is one day's recorded check-in.
type Entry struct {
	Date     string  `json:"date"`
	Achieved int     `json:"achieved"`
	Rate     float64 `json:"rate"`
	Mood     int     `json:"mood"`
}

// Ledger is the rolling store of check-ins, at most one entry per date,
// bounded to the most recent RetentionDays dates. It lives in memory for the
// duration of a session and is never written to disk.
type Ledger struct {
	entries []Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// SeedDemo returns a ledger pre-filled with six days of sample history
// ending the day before today, so a fresh session has something to chart.
func SeedDemo(today time.Time) *Ledger {
	l := NewLedger()
	// Midnight in today's own location; Truncate would snap to UTC days and
	// shift the dates in zones ahead of UTC.
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for i := 6; i >= 1; i-- {
		d := day.AddDate(0, 0, -i)
		achieved := clamp(1+(i%5), 0, 5)
		mood := clamp(6+(2-(i%5)), 1, 10)
		l.entries = append(l.entries, Entry{
			Date:     d.Format(DateFormat),
			Achieved: achieved,
			Rate:     ComputeRate(achieved, len(Defaults)),
			Mood:     mood,
		})
	}
	return l
}

// UpsertToday replaces any existing entry for e.Date, appends e, re-sorts by
// date and truncates to the last RetentionDays entries. It always succeeds.
func (l *Ledger) UpsertToday(e Entry) {
	kept := l.entries[:0]
	for _, existing := range l.entries {
		if existing.Date != e.Date {
			kept = append(kept, existing)
		}
	}
	l.entries = append(kept, e)
	sort.Slice(l.entries, func(i, j int) bool { return l.entries[i].Date < l.entries[j].Date })
	if len(l.entries) > RetentionDays {
		l.entries = l.entries[len(l.entries)-RetentionDays:]
	}
}

// RecentWindow returns the last n entries whose date differs from
// excludeDate, in ascending date order. Callers building the chart window
// append their own synthetic "today" entry afterwards.
func (l *Ledger) RecentWindow(n int, excludeDate string) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Date != excludeDate {
			out = append(out, e)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// Entries returns a copy of all held entries in ascending date order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of held entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.entries = nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
