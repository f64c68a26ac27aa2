package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a language-model request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// CallMeta holds operational metadata for one external provider call.
type CallMeta struct {
	Provider  string
	Operation string
	Status    int
	OK        bool
	Usage     TokenUsage
	Latency   time.Duration
}
