package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"habit-coach/internal/shared"
)

const owmBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Snapshot is a flat view of current conditions for one city.
// JSON tags match the share-payload shape.
type Snapshot struct {
	CityQuery   string  `json:"city"`
	Description string  `json:"description"`
	TempC       float64 `json:"temp_c"`
	FeelsLikeC  float64 `json:"feels_like_c"`
	Humidity    int     `json:"humidity"`
	WindMS      float64 `json:"wind_ms"`
}

// Summary renders the one-line form used in coach prompts and cards.
func (s *Snapshot) Summary() string {
	return fmt.Sprintf("%s / %s / %g°C (체감 %g°C) / 습도 %d%% / 바람 %gm/s",
		s.CityQuery, s.Description, s.TempC, s.FeelsLikeC, s.Humidity, s.WindMS)
}

// Service fetches a weather snapshot for a city query like "Seoul,KR".
type Service interface {
	Fetch(ctx context.Context, cityQuery string) (*Snapshot, *shared.ErrorDetail)
}

// Client is an OpenWeatherMap client (metric units, Korean descriptions).
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an OpenWeatherMap client. The key may be empty; Fetch
// then fails with a missing-credential error instead of calling out.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: owmBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type owmResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch retrieves current weather for cityQuery. The query should carry the
// country qualifier ("Seoul,KR") to avoid 404s on ambiguous city names.
func (c *Client) Fetch(ctx context.Context, cityQuery string) (*Snapshot, *shared.ErrorDetail) {
	if cityQuery == "" || c.apiKey == "" {
		return nil, shared.MissingCredential("Missing city or API key")
	}

	params := url.Values{}
	params.Set("q", cityQuery)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "kr")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, shared.TransportError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shared.TransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, shared.ProviderError(resp.StatusCode, readProviderMessage(resp.Body))
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, shared.TransportError(fmt.Errorf("failed to decode response: %w", err))
	}

	snap := &Snapshot{
		CityQuery:  cityQuery,
		TempC:      body.Main.Temp,
		FeelsLikeC: body.Main.FeelsLike,
		Humidity:   body.Main.Humidity,
		WindMS:     body.Wind.Speed,
	}
	if len(body.Weather) > 0 {
		snap.Description = body.Weather[0].Description
	}
	return snap, nil
}

// readProviderMessage extracts the provider's "message" field from an error
// body, falling back to the truncated raw body.
func readProviderMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	msg := string(raw)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
