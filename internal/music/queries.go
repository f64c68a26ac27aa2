package music

import "strings"

// Weather keyword groups, checked in priority order. The first group whose
// keyword appears in the description decides the query prefix.
var weatherPrefixes = []struct {
	keywords []string
	prefix   string
}{
	{[]string{"비", "소나기", "장마", "우천"}, "비 오는 날 "},
	{[]string{"눈", "폭설"}, "눈 오는 날 "},
	{[]string{"맑", "쾌청"}, "맑은 날 "},
	{[]string{"흐림", "구름"}, "흐린 날 "},
}

// Queries maps a mood score (1-10) and an optional weather description to
// exactly three search queries. Pure and deterministic; lower moods get
// calmer playlists, higher moods more energetic ones.
func Queries(mood int, weatherDescription string) []string {
	w := ""
	if weatherDescription != "" {
		for _, group := range weatherPrefixes {
			if containsAny(weatherDescription, group.keywords) {
				w = group.prefix
				break
			}
		}
	}

	switch {
	case mood <= 3:
		return []string{
			w + "위로되는 잔잔한 플레이리스트",
			w + "힐링 피아노 음악",
			w + "감성 발라드 플레이리스트",
		}
	case mood <= 6:
		return []string{
			w + "집중 잘되는 로파이",
			w + "카페 음악 플레이리스트",
			w + "기분 전환 인디 팝",
		}
	case mood <= 8:
		return []string{
			w + "신나는 K-POP 플레이리스트",
			w + "드라이브 음악 플레이리스트",
			w + "리듬 좋은 팝 플레이리스트",
		}
	default:
		return []string{
			w + "파티 EDM 플레이리스트",
			w + "하이텐션 운동 음악",
			w + "댄스 음악 플레이리스트",
		}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
