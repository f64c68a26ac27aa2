package dog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(url string) *Client {
	c := NewClient()
	c.baseURL = url
	return c
}

func TestBreedFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://images.dog.ceo/breeds/hound-afghan/n02088094_1003.jpg", "Afghan Hound"},
		{"https://images.dog.ceo/breeds/pug/n02110958_1975.jpg", "Pug"},
		{"https://images.dog.ceo/breeds/terrier-west-highland/n02098286_600.jpg", "West Terrier"},
		{"https://images.dog.ceo/breeds/MALTESE/photo.jpg", "Maltese"},
		{"https://example.com/not-a-dog.jpg", "Unknown"},
		{"https://images.dog.ceo/breeds//photo.jpg", "Unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			if got := BreedFromURL(tc.url); got != tc.want {
				t.Errorf("BreedFromURL(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "success", "message": "https://images.dog.ceo/breeds/hound-afghan/n02088094_1003.jpg"}`)
	}))
	defer srv.Close()

	card := newTestClient(srv.URL).Fetch(context.Background())
	if card == nil {
		t.Fatal("Expected a card, got nil")
	}
	if card.Breed != "Afghan Hound" {
		t.Errorf("Breed = %q, want Afghan Hound", card.Breed)
	}
	if card.ImageURL == "" {
		t.Error("Expected image URL to be set")
	}
}

func TestFetchFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"ServerError", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"NonSuccessStatus", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "error", "message": "Breed not found"}`)
		}},
		{"EmptyMessage", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status": "success", "message": ""}`)
		}},
		{"MalformedBody", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			if card := newTestClient(srv.URL).Fetch(context.Background()); card != nil {
				t.Errorf("Expected nil card, got %+v", card)
			}
		})
	}
}
