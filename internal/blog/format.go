package blog

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"habit-coach/internal/share"
)

// FormatReportHTML renders a share payload as the HTML body of a blog post.
func FormatReportHTML(p share.Payload) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<p><i>%s · %s · %s</i></p>", html.EscapeString(p.Date), html.EscapeString(p.City), html.EscapeString(p.CoachStyle))
	fmt.Fprintf(&sb, "<p><strong>달성률:</strong> %s%% (%s) | <strong>기분:</strong> %d/10</p>",
		strconv.FormatFloat(p.RatePercent, 'f', 1, 64), html.EscapeString(p.Achieved), p.Mood)

	sb.WriteString("<h2>오늘의 날씨</h2>")
	if p.Weather != nil {
		fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(p.Weather.Summary()))
	} else {
		sb.WriteString("<p>날씨 정보 없음</p>")
	}

	if p.Dog != nil {
		sb.WriteString("<h2>오늘의 강아지</h2>")
		fmt.Fprintf(&sb, "<p><img src=\"%s\" alt=\"%s\"><br>품종: %s</p>",
			html.EscapeString(p.Dog.ImageURL), html.EscapeString(p.Dog.Breed), html.EscapeString(p.Dog.Breed))
	}

	if len(p.Music) > 0 {
		sb.WriteString("<h2>음악 추천</h2><ul>")
		for _, m := range p.Music {
			fmt.Fprintf(&sb, "<li><a href=\"%s\">%s</a> (%s)</li>",
				html.EscapeString(m.VideoURL), html.EscapeString(m.Title), html.EscapeString(m.Channel))
		}
		sb.WriteString("</ul>")
	}

	sb.WriteString("<h2>AI 코치 리포트</h2>")
	report := p.Report
	if report == "" {
		report = "(리포트 없음)"
	}
	for _, line := range strings.Split(report, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(line))
	}

	return sb.String()
}
