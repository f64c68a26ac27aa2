package metrics

import (
	"database/sql"
	"time"

	"habit-coach/internal/shared"
)

// ProviderCall records metadata for a single external provider call. RunID
// ties together all calls made by one report-generation action.
type ProviderCall struct {
	RunID            string
	Provider         string
	Operation        string
	StatusCode       int
	OK               bool
	LatencyMS        int64
	PromptTokens     int
	CompletionTokens int
	Model            string
	Timestamp        time.Time
}

// Store handles persistence of provider-call metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a provider call to the database.
func (s *Store) Record(c ProviderCall) error {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO provider_calls
			(run_id, provider, operation, status_code, ok, latency_ms, prompt_tokens, completion_tokens, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RunID, c.Provider, c.Operation, c.StatusCode, boolToInt(c.OK),
		c.LatencyMS, c.PromptTokens, c.CompletionTokens, c.Model, ts,
	)
	return err
}

// RecordMeta records a call directly from shared.CallMeta.
func (s *Store) RecordMeta(runID string, meta shared.CallMeta) error {
	return s.Record(ProviderCall{
		RunID:            runID,
		Provider:         meta.Provider,
		Operation:        meta.Operation,
		StatusCode:       meta.Status,
		OK:               meta.OK,
		LatencyMS:        meta.Latency.Milliseconds(),
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		Model:            meta.Usage.Model,
		Timestamp:        time.Now().UTC(),
	})
}

// DailyUsage represents call totals for a single day.
type DailyUsage struct {
	Date            string
	Calls           int
	Failures        int
	AvgLatencyMS    float64
	TotalPrompt     int
	TotalCompletion int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.Query(`
		SELECT date(created_at) AS day,
		       COUNT(*),
		       SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END),
		       AVG(latency_ms),
		       SUM(prompt_tokens),
		       SUM(completion_tokens)
		FROM provider_calls
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		var avg sql.NullFloat64
		if err := rows.Scan(&u.Date, &u.Calls, &u.Failures, &avg, &u.TotalPrompt, &u.TotalCompletion); err != nil {
			return nil, err
		}
		if avg.Valid {
			u.AvgLatencyMS = avg.Float64
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many rows were deleted.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.Exec(`DELETE FROM provider_calls WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
