package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"habit-coach/internal/app"
	"habit-coach/internal/blog"
	"habit-coach/internal/coach"
	"habit-coach/internal/config"
	"habit-coach/internal/database"
	"habit-coach/internal/dog"
	"habit-coach/internal/habit"
	"habit-coach/internal/llm"
	"habit-coach/internal/metrics"
	"habit-coach/internal/music"
	"habit-coach/internal/session"
	"habit-coach/internal/weather"
	"time"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "report":
		runReport(ctx, cfg, os.Args[2:])
	case "music":
		runMusic(ctx, cfg, os.Args[2:])
	case "history":
		runHistory(cfg, os.Args[2:])
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old provider-call records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app.App, func()) {
	textGen, closeTextGen := buildTextGenerator(ctx, cfg)

	var blogClient blog.Client
	if cfg.BlogEnabled() {
		blogClient = blog.NewClient(cfg.GhostURL, cfg.GhostAdminKey)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	metricsStore := metrics.NewStore(db.SQL)

	application := app.NewApp(
		weather.NewClient(cfg.OpenWeatherAPIKey),
		dog.NewClient(),
		music.NewRecommender(cfg.YouTubeAPIKey),
		coach.NewGenerator(textGen),
		blogClient,
		metricsStore,
		cfg,
	)

	cleanup := func() {
		closeTextGen()
		db.Close()
	}
	return application, cleanup
}

// buildTextGenerator picks the coach LLM backend. A nil generator is valid:
// the report action then fails with a missing-credential error.
func buildTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, func()) {
	noop := func() {}

	if cfg.CoachProvider == config.ProviderGemini {
		if cfg.GeminiAPIKey == "" {
			return nil, noop
		}
		gen, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if closer, ok := gen.(llm.Closer); ok {
			return gen, func() { closer.Close() }
		}
		return gen, noop
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, noop
	}
	return llm.NewOpenAIClient(cfg.OpenAIAPIKey), noop
}

func runReport(ctx context.Context, cfg *config.Config, args []string) {
	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	habitsFlag := reportCmd.String("habits", "", "Comma-separated names of completed habits")
	mood := reportCmd.Int("mood", 6, "Mood score, 1-10")
	city := reportCmd.String("city", cfg.DefaultCity, "City label (e.g. Seoul)")
	style := reportCmd.String("style", defaultStyle(cfg), "Coach style")
	publish := reportCmd.Bool("publish", false, "Publish the report to the blog afterwards")
	reportCmd.Parse(args)

	cityQuery, ok := weather.QueryFor(*city)
	if !ok {
		log.Fatalf("Unknown city %q; choose one of the fixed city list", *city)
	}

	application, cleanup := buildApp(ctx, cfg)
	defer cleanup()

	s := session.New(time.Now())
	in := app.CheckIn{
		Checked:   parseHabits(*habitsFlag),
		Mood:      *mood,
		CityLabel: *city,
		CityQuery: cityQuery,
		Style:     coach.Style(*style),
	}

	fmt.Println("Generating coach report...")
	result := application.GenerateReport(ctx, s, in)

	fmt.Println("\n=== 오늘의 날씨 ===")
	if result.Weather != nil {
		fmt.Println(result.Weather.Summary())
	} else {
		fmt.Println("날씨 정보를 불러오지 못했어요.")
		if result.WeatherErr != nil {
			fmt.Printf("원인: %s\n", result.WeatherErr.Error())
		}
	}

	fmt.Println("\n=== 오늘의 강아지 카드 ===")
	if result.Dog != nil {
		fmt.Printf("품종: %s\n%s\n", result.Dog.Breed, result.Dog.ImageURL)
	} else {
		fmt.Println("강아지 이미지를 불러오지 못했어요.")
	}

	fmt.Println("\n=== 오늘의 음악 추천 ===")
	if len(result.Music) > 0 {
		for i, m := range result.Music {
			fmt.Printf("%d. %s (%s)\n   %s\n", i+1, m.Title, m.Channel, m.VideoURL)
		}
	} else {
		fmt.Println("음악 추천 없음")
		if result.MusicErr != nil {
			fmt.Printf("원인: %s\n", result.MusicErr.Error())
		}
	}

	fmt.Println("\n=== AI 코치 리포트 ===")
	if result.ReportErr != nil {
		fmt.Printf("리포트 생성 실패: %s\n", result.ReportErr.Error())
	} else {
		fmt.Println(result.Report)
	}

	fmt.Println("\n=== 공유용 텍스트 ===")
	fmt.Println(result.ShareText)

	if *publish {
		post, err := application.PublishLatest(s)
		if err != nil {
			log.Fatalf("Publish failed: %v", err)
		}
		fmt.Printf("\nPublished: %s (%s)\n", post.Title, post.URL)
	}
}

func runMusic(ctx context.Context, cfg *config.Config, args []string) {
	musicCmd := flag.NewFlagSet("music", flag.ExitOnError)
	mood := musicCmd.Int("mood", 6, "Mood score, 1-10")
	city := musicCmd.String("city", cfg.DefaultCity, "City label (e.g. Seoul)")
	musicCmd.Parse(args)

	cityQuery, ok := weather.QueryFor(*city)
	if !ok {
		log.Fatalf("Unknown city %q; choose one of the fixed city list", *city)
	}

	application, cleanup := buildApp(ctx, cfg)
	defer cleanup()

	s := session.New(time.Now())
	list, errDetail := application.RecommendMusic(ctx, s, *mood, cityQuery)
	if errDetail != nil {
		log.Fatalf("음악 추천을 가져오지 못했어요. 원인: %s", errDetail.Error())
	}

	fmt.Println("=== 기분 맞춤 음악 추천 ===")
	for i, m := range list {
		fmt.Printf("%d. %s (%s)\n   %s\n   검색 힌트: %s\n", i+1, m.Title, m.Channel, m.VideoURL, m.Query)
	}
}

func runHistory(cfg *config.Config, args []string) {
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	habitsFlag := historyCmd.String("habits", "", "Comma-separated names of completed habits")
	mood := historyCmd.Int("mood", 6, "Mood score, 1-10")
	historyCmd.Parse(args)

	s := session.New(time.Now())
	checked := parseHabits(*habitsFlag)

	achieved := habit.CountCompleted(checked)
	today := habit.Entry{
		Date:     time.Now().Format(habit.DateFormat),
		Achieved: achieved,
		Rate:     habit.ComputeRate(achieved, len(habit.Defaults)),
		Mood:     *mood,
	}

	fmt.Println("=== 최근 7일 달성률 ===")
	for _, e := range s.ChartWindow(app.ChartDays, today) {
		fmt.Printf("%s  %5.1f%%  (%d/%d, 기분 %d)\n", e.Date, e.Rate, e.Achieved, len(habit.Defaults), e.Mood)
	}
}

func parseHabits(raw string) map[string]bool {
	checked := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			checked[name] = true
		}
	}
	return checked
}

func defaultStyle(cfg *config.Config) string {
	if cfg.DefaultStyle != "" {
		return cfg.DefaultStyle
	}
	return string(coach.StyleWarmMentor)
}

func printUsage() {
	fmt.Println("Usage: habit-coach <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  report             Run today's check-in and generate the AI coach report")
	fmt.Println("  music              Get mood-matched music recommendations")
	fmt.Println("  history            Show the recent completion-rate window")
	fmt.Println("  metrics-cleanup    Remove old provider-call records")
}
