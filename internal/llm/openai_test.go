package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestOpenAIClient(url string) *openaiClient {
	c := NewOpenAIClient("test-key").(*openaiClient)
	c.baseURL = url
	return c
}

func responsesJSON(text string) string {
	return fmt.Sprintf(`{
		"model": "gpt-5-mini",
		"output": [
			{"type": "reasoning", "content": []},
			{"type": "message", "content": [{"type": "output_text", "text": %q}]}
		],
		"usage": {"input_tokens": 100, "output_tokens": 30, "total_tokens": 130}
	}`, text)
}

func chatJSON(text string) string {
	return fmt.Sprintf(`{
		"model": "gpt-5-mini",
		"choices": [{"message": {"content": %q}}],
		"usage": {"prompt_tokens": 100, "completion_tokens": 30, "total_tokens": 130}
	}`, text)
}

func TestGenerateContentResponsesMode(t *testing.T) {
	var chatCalled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/responses":
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Authorization = %q", got)
			}
			var body struct {
				Model string              `json:"model"`
				Input []map[string]string `json:"input"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode request: %v", err)
			}
			if body.Model != "gpt-5-mini" {
				t.Errorf("Model = %q", body.Model)
			}
			if len(body.Input) != 2 || body.Input[0]["role"] != "system" || body.Input[1]["role"] != "user" {
				t.Errorf("Unexpected input messages: %+v", body.Input)
			}
			fmt.Fprint(w, responsesJSON("primary report"))
		case "/chat/completions":
			chatCalled = true
			fmt.Fprint(w, chatJSON("fallback report"))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	resp, err := newTestOpenAIClient(srv.URL).GenerateContent(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if resp.Content != "primary report" {
		t.Errorf("Content = %q, want primary report", resp.Content)
	}
	if resp.Usage.PromptTokens != 100 || resp.Usage.CompletionTokens != 30 || resp.Usage.TotalTokens != 130 {
		t.Errorf("Unexpected usage: %+v", resp.Usage)
	}
	if resp.Usage.Model != "gpt-5-mini" {
		t.Errorf("Model = %q", resp.Usage.Model)
	}
	if chatCalled {
		t.Error("Chat completions should not be called when responses succeeds")
	}
}

func TestGenerateContentFallsBackToChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/responses":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"message": "Unknown endpoint"}}`)
		case "/chat/completions":
			fmt.Fprint(w, chatJSON("fallback report"))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	resp, err := newTestOpenAIClient(srv.URL).GenerateContent(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if resp.Content != "fallback report" {
		t.Errorf("Content = %q, want fallback report", resp.Content)
	}
	if resp.Usage.TotalTokens != 130 {
		t.Errorf("TotalTokens = %d, want 130", resp.Usage.TotalTokens)
	}
}

func TestGenerateContentEmptyResponsesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/responses":
			fmt.Fprint(w, `{"model": "gpt-5-mini", "output": [], "usage": {}}`)
		case "/chat/completions":
			fmt.Fprint(w, chatJSON("fallback report"))
		}
	}))
	defer srv.Close()

	resp, err := newTestOpenAIClient(srv.URL).GenerateContent(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if resp.Content != "fallback report" {
		t.Errorf("Content = %q, want fallback report", resp.Content)
	}
}

func TestGenerateContentSurfacesSecondaryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/responses":
			w.WriteHeader(http.StatusNotFound)
		case "/chat/completions":
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error": {"message": "Rate limit reached"}}`)
		}
	}))
	defer srv.Close()

	_, err := newTestOpenAIClient(srv.URL).GenerateContent(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "status=429") {
		t.Errorf("Expected the chat-completions failure, got %v", err)
	}
}
