package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"habit-coach/internal/shared"
)

const (
	openaiBaseURL = "https://api.openai.com/v1"
	openaiModel   = "gpt-5-mini"
)

// openaiClient is a client for the OpenAI API. GenerateContent tries the
// Responses API first and falls back to Chat Completions: the two call modes
// form an ordered strategy list where the first success wins and only the
// last failure is surfaced.
type openaiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(apiKey string) TextGenerator {
	return &openaiClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: openaiBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *openaiClient) GenerateContent(ctx context.Context, system, user string) (ContentResponse, error) {
	resp, err := c.createResponse(ctx, system, user)
	if err == nil {
		return resp, nil
	}
	return c.createChatCompletion(ctx, system, user)
}

// createResponse calls the structured Responses API.
func (c *openaiClient) createResponse(ctx context.Context, system, user string) (ContentResponse, error) {
	reqBody := map[string]interface{}{
		"model": openaiModel,
		"input": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	raw, err := c.post(ctx, "/responses", reqBody)
	if err != nil {
		return ContentResponse{}, err
	}

	var body struct {
		Model  string `json:"model"`
		Output []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
			TotalTokens  int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	for _, out := range body.Output {
		if out.Type != "message" {
			continue
		}
		for _, part := range out.Content {
			if part.Type == "output_text" {
				sb.WriteString(part.Text)
			}
		}
	}
	if sb.Len() == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: sb.String(),
		Usage: shared.TokenUsage{
			PromptTokens:     body.Usage.InputTokens,
			CompletionTokens: body.Usage.OutputTokens,
			TotalTokens:      body.Usage.TotalTokens,
			Model:            body.Model,
		},
	}, nil
}

// createChatCompletion calls the Chat Completions API.
func (c *openaiClient) createChatCompletion(ctx context.Context, system, user string) (ContentResponse, error) {
	reqBody := map[string]interface{}{
		"model": openaiModel,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	raw, err := c.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return ContentResponse{}, err
	}

	var body struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: body.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     body.Usage.PromptTokens,
			CompletionTokens: body.Usage.CompletionTokens,
			TotalTokens:      body.Usage.TotalTokens,
			Model:            body.Model,
		},
	}, nil
}

func (c *openaiClient) post(ctx context.Context, path string, reqBody interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai api error: status=%d body=%s", resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
