package dog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode"
)

const dogCeoURL = "https://dog.ceo/api/breeds/image/random"

// Card is a random dog image with the breed label read off its URL.
type Card struct {
	ImageURL string `json:"image_url"`
	Breed    string `json:"breed"`
}

// Service fetches a random dog card. A nil card means the lookup failed;
// this provider needs no credential and its failures are never fatal.
type Service interface {
	Fetch(ctx context.Context) *Card
}

// Client is a Dog CEO API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: dogCeoURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch returns a random dog card, or nil on any failure.
func (c *Client) Fetch(ctx context.Context) *Card {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	if body.Status != "success" || body.Message == "" {
		return nil
	}

	return &Card{ImageURL: body.Message, Breed: BreedFromURL(body.Message)}
}

// BreedFromURL derives a breed label from a Dog CEO image URL. The path
// segment after "/breeds/" is a slug like "hound-afghan", where the sub-breed
// follows the primary breed, so two-word slugs are reordered sub-breed first
// ("Afghan Hound"). Anything unparsable becomes "Unknown".
func BreedFromURL(imageURL string) string {
	_, after, found := strings.Cut(imageURL, "/breeds/")
	if !found {
		return "Unknown"
	}
	slug := after
	if i := strings.IndexByte(slug, '/'); i >= 0 {
		slug = slug[:i]
	}
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	switch len(words) {
	case 0:
		return "Unknown"
	case 1:
		return titleWord(words[0])
	default:
		return titleWord(words[1]) + " " + titleWord(words[0])
	}
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
