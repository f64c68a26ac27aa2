package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Coach LLM provider names accepted by COACH_LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds the configuration for the application. API keys are optional
// at load time: a missing key surfaces as a missing-credential error when
// the corresponding provider is actually called, not at startup.
type Config struct {
	OpenAIAPIKey      string
	GeminiAPIKey      string
	CoachProvider     string
	OpenWeatherAPIKey string
	YouTubeAPIKey     string

	// Ghost Config (optional: report publishing)
	GhostURL      string
	GhostAdminKey string

	// Telegram Config (optional for CLI, required for Bot)
	TelegramBotToken     string
	TelegramWebhookURL   string
	TelegramAllowUserIDs []int64

	DatabasePath string
	DefaultCity  string
	DefaultStyle string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	coachProvider := os.Getenv("COACH_LLM_PROVIDER")
	if coachProvider == "" {
		coachProvider = ProviderOpenAI
	}
	if coachProvider != ProviderOpenAI && coachProvider != ProviderGemini {
		return nil, fmt.Errorf("COACH_LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, coachProvider)
	}

	dbPath := os.Getenv("HABIT_DB_PATH")
	if dbPath == "" {
		dbPath = "data/habit-coach.db"
	}

	defaultCity := os.Getenv("DEFAULT_CITY")
	if defaultCity == "" {
		defaultCity = "Seoul"
	}

	var allowIDs []int64
	if raw := os.Getenv("TELEGRAM_ALLOW_USER_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_IDS entry %q: %w", part, err)
			}
			allowIDs = append(allowIDs, id)
		}
	}

	return &Config{
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		CoachProvider:        coachProvider,
		OpenWeatherAPIKey:    os.Getenv("OPENWEATHER_API_KEY"),
		YouTubeAPIKey:        os.Getenv("YOUTUBE_API_KEY"),
		GhostURL:             os.Getenv("GHOST_API_URL"),
		GhostAdminKey:        os.Getenv("GHOST_ADMIN_API_KEY"),
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:   os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowUserIDs: allowIDs,
		DatabasePath:         dbPath,
		DefaultCity:          defaultCity,
		DefaultStyle:         os.Getenv("DEFAULT_COACH_STYLE"),
	}, nil
}

// BlogEnabled reports whether report publishing to Ghost is configured.
func (c *Config) BlogEnabled() bool {
	return c.GhostURL != "" && c.GhostAdminKey != ""
}
