package coach

import (
	"fmt"
	"strings"

	"habit-coach/internal/dog"
	"habit-coach/internal/habit"
	"habit-coach/internal/music"
	"habit-coach/internal/weather"
)

// Style selects the tone/persona used to phrase the generated report.
type Style string

const (
	StyleSparta     Style = "스파르타 코치"
	StyleWarmMentor Style = "따뜻한 멘토"
	StyleGameMaster Style = "게임 마스터"
)

// Styles is the selectable set, display order.
var Styles = []Style{StyleSparta, StyleWarmMentor, StyleGameMaster}

// Descriptions are the short blurbs the UI surfaces show next to each style.
var Descriptions = map[Style]string{
	StyleSparta:     "엄격하고 직설적이며 행동을 강하게 요구하는 코치",
	StyleWarmMentor: "다정하고 공감하며 작은 성취도 크게 칭찬하는 멘토",
	StyleGameMaster: "RPG 퀘스트/레벨업 톤으로 재미있게 이끄는 게임 마스터",
}

// SystemPrompt returns the fixed persona instruction for a style.
// Unknown styles fall back to the warm mentor.
func SystemPrompt(style Style) string {
	switch style {
	case StyleSparta:
		return "너는 매우 엄격하고 직설적인 코치다. " +
			"핑계를 허용하지 않고, 구체적 행동을 강하게 요구한다. " +
			"짧고 임팩트 있게 말하되, 실천 가능한 지시를 반드시 포함해라."
	case StyleGameMaster:
		return "너는 RPG 세계관의 게임 마스터다. " +
			"사용자는 플레이어이며, 습관은 퀘스트/스탯/레벨업으로 표현한다. " +
			"재미있고 몰입감 있게, 하지만 실제로 실행 가능한 조언을 제공해라."
	default:
		return "너는 따뜻하고 공감하는 멘토다. " +
			"사용자의 노력과 감정을 인정하고, 작은 성취도 칭찬한다. " +
			"부담 없는 다음 행동을 제안해라."
	}
}

// Sentinels embedded in the prompt when a lookup produced nothing.
const (
	noWeatherText = "날씨 정보 없음"
	noDogText     = "강아지 정보 없음"
	noMusicText   = "음악 추천 없음"
)

// BuildUserPrompt assembles the structured check-in prompt. The output
// format block at the end is a contract with the model, not a schema the
// caller enforces.
func BuildUserPrompt(checked map[string]bool, mood int, w *weather.Snapshot, d *dog.Card, musicList []music.Recommendation) string {
	var habitLines []string
	for _, def := range habit.Defaults {
		status := "미완료"
		if checked[def.Name] {
			status = "완료"
		}
		habitLines = append(habitLines, fmt.Sprintf("- %s %s: %s", def.Symbol, def.Name, status))
	}

	achieved := habit.CountCompleted(checked)
	rate := habit.ComputeRate(achieved, len(habit.Defaults))

	weatherText := noWeatherText
	if w != nil {
		weatherText = w.Summary()
	}

	dogText := noDogText
	if d != nil {
		dogText = fmt.Sprintf("%s (이미지 URL 제공됨)", d.Breed)
	}

	musicText := noMusicText
	if len(musicList) > 0 {
		top := musicList
		if len(top) > 3 {
			top = top[:3]
		}
		var lines []string
		for _, m := range top {
			lines = append(lines, fmt.Sprintf("- %s (%s)", m.Title, m.Channel))
		}
		musicText = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`[오늘 체크인 요약]
달성률: %.0f%%
완료 습관 수: %d/%d
기분(1~10): %d

[습관 상세]
%s

[날씨]
%s

[오늘의 랜덤 강아지]
%s

[오늘의 음악 추천(참고)]
%s

[출력 형식 - 반드시 아래 섹션 제목 그대로 출력]
컨디션 등급: (S/A/B/C/D 중 하나)
습관 분석: (2~5줄, 핵심만)
날씨 코멘트: (1~2줄)
내일 미션: (불릿 3개)
오늘의 한마디: (한 문장)`,
		rate, achieved, len(habit.Defaults), mood,
		strings.Join(habitLines, "\n"),
		weatherText, dogText, musicText)
}
