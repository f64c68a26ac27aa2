package share

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"habit-coach/internal/dog"
	"habit-coach/internal/music"
	"habit-coach/internal/weather"
)

// Payload bundles everything one report-generation action produced. Nil
// pointers and nil slices serialize as explicit JSON nulls, so a consumer
// can tell "not fetched" from "empty".
type Payload struct {
	Date         string                 `json:"date"`
	City         string                 `json:"city"`
	CityQuery    string                 `json:"city_query"`
	CoachStyle   string                 `json:"coach_style"`
	RatePercent  float64                `json:"rate_percent"`
	Achieved     string                 `json:"achieved"`
	Mood         int                    `json:"mood"`
	Weather      *weather.Snapshot      `json:"weather"`
	WeatherError string                 `json:"weather_error,omitempty"`
	Dog          *dog.Card              `json:"dog"`
	Music        []music.Recommendation `json:"music"`
	Report       string                 `json:"report"`
}

// Compose renders the share text: human-readable summary lines followed by
// the full payload as an indented JSON block. Same payload in, byte-identical
// string out.
func Compose(p Payload) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[AI 습관 트래커 공유]\n")
	fmt.Fprintf(&sb, "- 날짜: %s\n", p.Date)
	fmt.Fprintf(&sb, "- 도시: %s (%s)\n", p.City, p.CityQuery)
	fmt.Fprintf(&sb, "- 코치: %s\n", p.CoachStyle)
	fmt.Fprintf(&sb, "- 달성률: %s%% (%s)\n", strconv.FormatFloat(p.RatePercent, 'f', 1, 64), p.Achieved)
	fmt.Fprintf(&sb, "- 기분: %d/10\n\n", p.Mood)

	sb.WriteString("[음악 추천]\n")
	if len(p.Music) > 0 {
		top := p.Music
		if len(top) > 3 {
			top = top[:3]
		}
		for _, m := range top {
			fmt.Fprintf(&sb, "- %s (%s) %s\n", m.Title, m.Channel, m.VideoURL)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("(없음)\n\n")
	}

	report := p.Report
	if report == "" {
		report = "(리포트 없음)"
	}
	fmt.Fprintf(&sb, "[리포트]\n%s\n\n", report)

	sb.WriteString("[원본 데이터(JSON)]\n")
	sb.WriteString(marshalPayload(p))

	return sb.String()
}

func marshalPayload(p Payload) string {
	if len(p.Music) > 5 {
		p.Music = p.Music[:5]
	}
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		// Payload holds only plain data types; this cannot happen in practice.
		return "{}"
	}
	return string(raw)
}
