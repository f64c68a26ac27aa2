package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit-coach/internal/app"
	"habit-coach/internal/blog"
	"habit-coach/internal/coach"
	"habit-coach/internal/config"
	"habit-coach/internal/database"
	"habit-coach/internal/dog"
	"habit-coach/internal/llm"
	"habit-coach/internal/metrics"
	"habit-coach/internal/music"
	"habit-coach/internal/telegram"
	"habit-coach/internal/weather"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required for the bot")
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure (LLM backend)
	var textGen llm.TextGenerator
	switch {
	case cfg.CoachProvider == config.ProviderGemini && cfg.GeminiAPIKey != "":
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		if closer, ok := gemini.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = gemini
	case cfg.OpenAIAPIKey != "":
		textGen = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}

	// 3. Initialize the SQLite metrics database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	metricsStore := metrics.NewStore(db.SQL)

	// 4. Initialize Services
	var blogClient blog.Client
	if cfg.BlogEnabled() {
		blogClient = blog.NewClient(cfg.GhostURL, cfg.GhostAdminKey)
	}

	application := app.NewApp(
		weather.NewClient(cfg.OpenWeatherAPIKey),
		dog.NewClient(),
		music.NewRecommender(cfg.YouTubeAPIKey),
		coach.NewGenerator(textGen),
		blogClient,
		metricsStore,
		cfg,
	)

	// 5. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 6. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
