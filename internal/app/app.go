package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"habit-coach/internal/blog"
	"habit-coach/internal/coach"
	"habit-coach/internal/config"
	"habit-coach/internal/dog"
	"habit-coach/internal/habit"
	"habit-coach/internal/metrics"
	"habit-coach/internal/music"
	"habit-coach/internal/session"
	"habit-coach/internal/share"
	"habit-coach/internal/shared"
	"habit-coach/internal/weather"

	"github.com/google/uuid"
)

// ChartDays is how many persisted entries the chart window holds before the
// synthetic today entry is appended.
const ChartDays = 6

// CheckIn is the user input for one action: which habits are checked, the
// mood score, and the environment selections.
type CheckIn struct {
	Checked   map[string]bool
	Mood      int
	CityLabel string
	CityQuery string
	Style     coach.Style
}

// ReportResult is everything one report-generation action produced. Partial
// failure is normal: a nil Weather or Dog and a non-nil matching error mean
// the report was generated with a sentinel in that slot.
type ReportResult struct {
	RunID      string
	Entry      habit.Entry
	Weather    *weather.Snapshot
	WeatherErr *shared.ErrorDetail
	Dog        *dog.Card
	Music      []music.Recommendation
	MusicErr   *shared.ErrorDetail
	Report     string
	ReportErr  *shared.ErrorDetail
	ShareText  string
}

// App holds the application's dependencies and runs the user-triggered
// actions. All work within one action is sequential; each external call is
// bounded by its client's timeout.
type App struct {
	weatherSvc   weather.Service
	dogSvc       dog.Service
	musicSvc     music.Service
	coachGen     *coach.Generator
	blogClient   blog.Client
	metricsStore *metrics.Store
	cfg          *config.Config

	now func() time.Time
}

// NewApp creates and initializes a new App instance. blogClient and
// metricsStore may be nil; the matching features are then disabled.
func NewApp(
	weatherSvc weather.Service,
	dogSvc dog.Service,
	musicSvc music.Service,
	coachGen *coach.Generator,
	blogClient blog.Client,
	metricsStore *metrics.Store,
	cfg *config.Config,
) *App {
	return &App{
		weatherSvc:   weatherSvc,
		dogSvc:       dogSvc,
		musicSvc:     musicSvc,
		coachGen:     coachGen,
		blogClient:   blogClient,
		metricsStore: metricsStore,
		cfg:          cfg,
		now:          time.Now,
	}
}

// RecommendMusic fetches weather (best effort, it only tints the queries)
// and asks the recommender for a fresh list. On success the session's
// latest-music slot is replaced; on failure it is cleared.
func (a *App) RecommendMusic(ctx context.Context, s *session.Session, mood int, cityQuery string) ([]music.Recommendation, *shared.ErrorDetail) {
	runID := uuid.NewString()

	snap, _ := a.fetchWeather(ctx, runID, cityQuery)

	start := time.Now()
	list, errDetail := a.musicSvc.Recommend(ctx, mood, snap, music.DefaultMaxResults)
	a.record(runID, shared.CallMeta{
		Provider:  "youtube",
		Operation: "search",
		Status:    statusOf(errDetail),
		OK:        errDetail == nil,
		Latency:   time.Since(start),
	})

	if errDetail != nil {
		s.SetLatestMusic(nil)
		return nil, errDetail
	}
	s.SetLatestMusic(list)
	return list, nil
}

// GenerateReport runs the full report action: persist today's check-in,
// gather weather/dog/music, generate the coach report, and compose the share
// text. Lookup failures degrade to sentinels; only the report's own failure
// is carried as ReportErr, and the rest of the result stays usable.
func (a *App) GenerateReport(ctx context.Context, s *session.Session, in CheckIn) *ReportResult {
	runID := uuid.NewString()
	today := a.now().Format(habit.DateFormat)

	achieved := habit.CountCompleted(in.Checked)
	entry := habit.Entry{
		Date:     today,
		Achieved: achieved,
		Rate:     habit.ComputeRate(achieved, len(habit.Defaults)),
		Mood:     in.Mood,
	}
	s.UpsertToday(entry)

	result := &ReportResult{RunID: runID, Entry: entry}

	// Weather always goes first: the music queries and the prompt both use it.
	result.Weather, result.WeatherErr = a.fetchWeather(ctx, runID, in.CityQuery)

	start := time.Now()
	result.Dog = a.dogSvc.Fetch(ctx)
	a.record(runID, shared.CallMeta{
		Provider:  "dogceo",
		Operation: "random_image",
		OK:        result.Dog != nil,
		Latency:   time.Since(start),
	})

	// Reuse a recommendation from an earlier action if one is cached;
	// otherwise try once, and only when a key is configured at all.
	result.Music = s.LatestMusic()
	if result.Music == nil && a.cfg.YouTubeAPIKey != "" {
		start = time.Now()
		list, errDetail := a.musicSvc.Recommend(ctx, in.Mood, result.Weather, music.DefaultMaxResults)
		a.record(runID, shared.CallMeta{
			Provider:  "youtube",
			Operation: "search",
			Status:    statusOf(errDetail),
			OK:        errDetail == nil,
			Latency:   time.Since(start),
		})
		if errDetail != nil {
			result.MusicErr = errDetail
		} else {
			result.Music = list
			s.SetLatestMusic(list)
		}
	}

	start = time.Now()
	report, usage, reportErr := a.coachGen.Generate(ctx, in.Style, in.Checked, in.Mood, result.Weather, result.Dog, result.Music)
	a.record(runID, shared.CallMeta{
		Provider:  a.cfg.CoachProvider,
		Operation: "report",
		Status:    statusOf(reportErr),
		OK:        reportErr == nil,
		Usage:     usage,
		Latency:   time.Since(start),
	})
	result.Report = report
	result.ReportErr = reportErr

	payload := a.buildPayload(in, result)
	result.ShareText = share.Compose(payload)
	s.SetLatestResult(result.Report, result.ShareText, payload)

	return result
}

// ChartWindow returns the chart points for a not-yet-persisted today entry:
// up to ChartDays prior entries plus the synthetic today entry.
func (a *App) ChartWindow(s *session.Session, checked map[string]bool, mood int) []habit.Entry {
	achieved := habit.CountCompleted(checked)
	today := habit.Entry{
		Date:     a.now().Format(habit.DateFormat),
		Achieved: achieved,
		Rate:     habit.ComputeRate(achieved, len(habit.Defaults)),
		Mood:     mood,
	}
	return s.ChartWindow(ChartDays, today)
}

// PublishLatest posts the session's most recent result to the blog. It
// publishes the payload composed at generation time, so the post carries the
// same rate, mood and lookup data the report was written against.
func (a *App) PublishLatest(s *session.Session) (*blog.Post, error) {
	if a.blogClient == nil {
		return nil, fmt.Errorf("blog publishing is not configured")
	}
	payload := s.LatestPayload()
	if payload == nil {
		return nil, fmt.Errorf("no report to publish; generate one first")
	}

	runID := uuid.NewString()
	start := time.Now()
	post, err := a.blogClient.PublishPost(
		fmt.Sprintf("습관 체크인 리포트 %s", payload.Date),
		blog.FormatReportHTML(*payload),
		true,
	)
	a.record(runID, shared.CallMeta{
		Provider:  "ghost",
		Operation: "publish_post",
		OK:        err == nil,
		Latency:   time.Since(start),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}
	return post, nil
}

func (a *App) fetchWeather(ctx context.Context, runID, cityQuery string) (*weather.Snapshot, *shared.ErrorDetail) {
	start := time.Now()
	snap, errDetail := a.weatherSvc.Fetch(ctx, cityQuery)
	a.record(runID, shared.CallMeta{
		Provider:  "openweathermap",
		Operation: "current_weather",
		Status:    statusOf(errDetail),
		OK:        errDetail == nil,
		Latency:   time.Since(start),
	})
	return snap, errDetail
}

func (a *App) buildPayload(in CheckIn, r *ReportResult) share.Payload {
	p := share.Payload{
		Date:        r.Entry.Date,
		City:        in.CityLabel,
		CityQuery:   in.CityQuery,
		CoachStyle:  string(in.Style),
		RatePercent: r.Entry.Rate,
		Achieved:    fmt.Sprintf("%d/%d", r.Entry.Achieved, len(habit.Defaults)),
		Mood:        r.Entry.Mood,
		Weather:     r.Weather,
		Dog:         r.Dog,
		Music:       r.Music,
		Report:      r.Report,
	}
	if r.WeatherErr != nil {
		p.WeatherError = r.WeatherErr.Error()
	}
	return p
}

func (a *App) record(runID string, meta shared.CallMeta) {
	if a.metricsStore == nil {
		return
	}
	if err := a.metricsStore.RecordMeta(runID, meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s/%s: %v", meta.Provider, meta.Operation, err)
	}
}

func statusOf(e *shared.ErrorDetail) int {
	if e == nil {
		return 0
	}
	return e.Status
}
