package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"habit-coach/internal/shared"
)

func newTestClient(url string) *Client {
	c := NewClient("test-key")
	c.baseURL = url
	return c
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Seoul,KR" {
			t.Errorf("Expected q=Seoul,KR, got %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("Expected units=metric, got %q", got)
		}
		if got := r.URL.Query().Get("lang"); got != "kr" {
			t.Errorf("Expected lang=kr, got %q", got)
		}
		fmt.Fprint(w, `{
			"weather": [{"description": "맑음"}],
			"main": {"temp": 21.3, "feels_like": 20.1, "humidity": 55},
			"wind": {"speed": 3.4}
		}`)
	}))
	defer srv.Close()

	snap, errDetail := newTestClient(srv.URL).Fetch(context.Background(), "Seoul,KR")
	if errDetail != nil {
		t.Fatalf("Fetch failed: %v", errDetail)
	}
	if snap.Description != "맑음" {
		t.Errorf("Description = %q, want 맑음", snap.Description)
	}
	if snap.TempC != 21.3 || snap.FeelsLikeC != 20.1 || snap.Humidity != 55 || snap.WindMS != 3.4 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
	if snap.CityQuery != "Seoul,KR" {
		t.Errorf("CityQuery = %q, want Seoul,KR", snap.CityQuery)
	}
}

func TestFetchMissingCredential(t *testing.T) {
	t.Run("NoKey", func(t *testing.T) {
		_, errDetail := NewClient("").Fetch(context.Background(), "Seoul,KR")
		if errDetail == nil || errDetail.Kind != shared.KindMissingCredential {
			t.Fatalf("Expected missing-credential error, got %v", errDetail)
		}
	})
	t.Run("NoCity", func(t *testing.T) {
		_, errDetail := NewClient("key").Fetch(context.Background(), "")
		if errDetail == nil || errDetail.Kind != shared.KindMissingCredential {
			t.Fatalf("Expected missing-credential error, got %v", errDetail)
		}
	})
}

func TestFetchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod": "404", "message": "city not found"}`)
	}))
	defer srv.Close()

	_, errDetail := newTestClient(srv.URL).Fetch(context.Background(), "Nowhere,KR")
	if errDetail == nil || errDetail.Kind != shared.KindProvider {
		t.Fatalf("Expected provider error, got %v", errDetail)
	}
	if errDetail.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", errDetail.Status)
	}
	if errDetail.Message != "city not found" {
		t.Errorf("Message = %q, want provider message", errDetail.Message)
	}
	if got := errDetail.Error(); got != "HTTP 404: city not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFetchMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	_, errDetail := newTestClient(srv.URL).Fetch(context.Background(), "Seoul,KR")
	if errDetail == nil || errDetail.Kind != shared.KindTransport {
		t.Fatalf("Expected transport error, got %v", errDetail)
	}
}

func TestFetchMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	snap, errDetail := newTestClient(srv.URL).Fetch(context.Background(), "Seoul,KR")
	if errDetail != nil {
		t.Fatalf("Fetch failed: %v", errDetail)
	}
	if snap.Description != "" || snap.TempC != 0 {
		t.Errorf("Expected zero values for absent fields, got %+v", snap)
	}
}

func TestQueryFor(t *testing.T) {
	if q, ok := QueryFor("Jeju"); !ok || q != "Jeju City,KR" {
		t.Errorf("QueryFor(Jeju) = %q, %v", q, ok)
	}
	if _, ok := QueryFor("Paris"); ok {
		t.Error("QueryFor(Paris) should not resolve")
	}
}

func TestSnapshotSummary(t *testing.T) {
	s := &Snapshot{CityQuery: "Seoul,KR", Description: "맑음", TempC: 21.3, FeelsLikeC: 20.1, Humidity: 55, WindMS: 3.4}
	want := "Seoul,KR / 맑음 / 21.3°C (체감 20.1°C) / 습도 55% / 바람 3.4m/s"
	if got := s.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
