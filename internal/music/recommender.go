package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"habit-coach/internal/shared"
	"habit-coach/internal/weather"
)

const searchBaseURL = "https://www.googleapis.com/youtube/v3/search"

// DefaultMaxResults caps the recommendation list.
const DefaultMaxResults = 5

// Recommendation is one recommended video. Query keeps the search string
// that surfaced it, for traceability.
type Recommendation struct {
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	VideoURL  string `json:"video_url"`
	Thumbnail string `json:"thumbnail"`
	Query     string `json:"query_hint"`
}

// Service recommends music videos for a mood, optionally tinted by weather.
type Service interface {
	Recommend(ctx context.Context, mood int, w *weather.Snapshot, maxResults int) ([]Recommendation, *shared.ErrorDetail)
}

// Recommender searches YouTube Data API v3 with the mood-mapped queries and
// collects distinct videos until the cap is reached.
type Recommender struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewRecommender creates a YouTube-backed recommender. The key may be empty;
// Recommend then fails with a missing-credential error.
func NewRecommender(apiKey string) *Recommender {
	return &Recommender{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: searchBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		Thumbnails   struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

// Recommend iterates the three mapped queries in order, deduplicating by
// video id, and stops once maxResults distinct videos are collected. The
// first non-2xx response aborts the whole call: key and quota errors would
// fail the remaining queries the same way.
func (r *Recommender) Recommend(ctx context.Context, mood int, w *weather.Snapshot, maxResults int) ([]Recommendation, *shared.ErrorDetail) {
	if r.apiKey == "" {
		return nil, shared.MissingCredential("YouTube API Key가 없어요.")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	desc := ""
	if w != nil {
		desc = w.Description
	}
	queries := Queries(mood, desc)

	var collected []Recommendation
	seen := make(map[string]struct{})

	for _, q := range queries {
		if len(collected) >= maxResults {
			break
		}

		items, errDetail := r.search(ctx, q)
		if errDetail != nil {
			return nil, errDetail
		}

		for _, item := range items {
			vid := item.ID.VideoID
			if vid == "" {
				continue
			}
			if _, dup := seen[vid]; dup {
				continue
			}
			title := item.Snippet.Title
			if title == "" {
				title = "Untitled"
			}
			collected = append(collected, Recommendation{
				Title:     title,
				Channel:   item.Snippet.ChannelTitle,
				VideoURL:  "https://www.youtube.com/watch?v=" + vid,
				Thumbnail: item.Snippet.Thumbnails.High.URL,
				Query:     q,
			})
			seen[vid] = struct{}{}
			if len(collected) >= maxResults {
				break
			}
		}
	}

	if len(collected) == 0 {
		return nil, shared.NoResults("검색 결과가 없어요. (키/쿼터/검색어 문제일 수 있어요)")
	}
	return collected, nil
}

func (r *Recommender) search(ctx context.Context, query string) ([]searchItem, *shared.ErrorDetail) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(DefaultMaxResults))
	params.Set("key", r.apiKey)
	params.Set("safeSearch", "strict")
	params.Set("relevanceLanguage", "ko")
	params.Set("videoEmbeddable", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, shared.TransportError(err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, shared.TransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, shared.ProviderError(resp.StatusCode, readErrorMessage(resp.Body))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, shared.TransportError(fmt.Errorf("failed to decode response: %w", err))
	}
	return body.Items, nil
}

func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	msg := string(raw)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
