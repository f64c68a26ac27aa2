package llm

import (
	"context"

	"habit-coach/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a system
// instruction plus user content.
type TextGenerator interface {
	GenerateContent(ctx context.Context, system, user string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
