package coach

import (
	"context"

	"habit-coach/internal/dog"
	"habit-coach/internal/llm"
	"habit-coach/internal/music"
	"habit-coach/internal/shared"
	"habit-coach/internal/weather"
)

// Generator produces the coaching report from the day's check-in data.
type Generator struct {
	gen llm.TextGenerator
}

// NewGenerator wraps a text generator. A nil generator means no language
// model credential was configured; Generate then fails with a
// missing-credential error instead of calling out.
func NewGenerator(gen llm.TextGenerator) *Generator {
	return &Generator{gen: gen}
}

// Generate builds the style-conditioned prompt and asks the model for the
// report. Missing weather, dog or music data degrade to sentinel lines in
// the prompt; they never block generation. Returns the report text and the
// token usage of the successful call.
func (g *Generator) Generate(
	ctx context.Context,
	style Style,
	checked map[string]bool,
	mood int,
	w *weather.Snapshot,
	d *dog.Card,
	musicList []music.Recommendation,
) (string, shared.TokenUsage, *shared.ErrorDetail) {
	if g.gen == nil {
		return "", shared.TokenUsage{}, shared.MissingCredential("OpenAI API Key가 필요해요.")
	}

	system := SystemPrompt(style)
	user := BuildUserPrompt(checked, mood, w, d, musicList)

	resp, err := g.gen.GenerateContent(ctx, system, user)
	if err != nil {
		return "", shared.TokenUsage{}, shared.ProviderError(0, "AI 호출 실패: "+err.Error())
	}
	return resp.Content, resp.Usage, nil
}
