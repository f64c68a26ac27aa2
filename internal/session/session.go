package session

import (
	"sync"
	"time"

	"habit-coach/internal/habit"
	"habit-coach/internal/music"
	"habit-coach/internal/share"
)

// Session is the per-user mutable state: the check-in ledger plus the
// "latest result" slots that survive between actions. It replaces ambient
// globals; one instance per user session, cleared on session end. The mutex
// covers concurrent access from bot handlers; actions themselves run one at
// a time per session.
type Session struct {
	mu sync.Mutex

	ledger        *habit.Ledger
	latestMusic   []music.Recommendation
	latestText    string
	latestShare   string
	latestPayload *share.Payload
}

// New creates a session with the demo-seeded ledger.
func New(now time.Time) *Session {
	return &Session{ledger: habit.SeedDemo(now)}
}

// UpsertToday records today's check-in entry in the ledger.
func (s *Session) UpsertToday(e habit.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.UpsertToday(e)
}

// ChartWindow returns up to n persisted entries before today plus the
// synthetic today entry appended last, the exact set a chart renders.
func (s *Session) ChartWindow(n int, today habit.Entry) []habit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	window := s.ledger.RecentWindow(n, today.Date)
	return append(window, today)
}

// History returns a copy of the full ledger contents.
func (s *Session) History() []habit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

// LatestMusic returns the cached recommendation list, or nil.
func (s *Session) LatestMusic() []music.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestMusic
}

// SetLatestMusic caches a recommendation list. nil clears the slot.
func (s *Session) SetLatestMusic(list []music.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestMusic = list
}

// LatestReport returns the most recent report text, or "".
func (s *Session) LatestReport() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestText
}

// LatestShareText returns the most recent share text, or "".
func (s *Session) LatestShareText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestShare
}

// LatestPayload returns the payload composed by the most recent generation
// action, or nil when none has run yet.
func (s *Session) LatestPayload() *share.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestPayload
}

// SetLatestResult stores the report, share text and composed payload
// produced by a generation action, overwriting the previous set.
func (s *Session) SetLatestResult(report, shareText string, payload share.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestText = report
	s.latestShare = shareText
	s.latestPayload = &payload
}

// Clear resets the session to its post-init state with an empty ledger.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = habit.NewLedger()
	s.latestMusic = nil
	s.latestText = ""
	s.latestShare = ""
	s.latestPayload = nil
}
