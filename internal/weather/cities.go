package weather

// City pairs a display label with the provider query string. Queries carry
// the country code so OpenWeatherMap does not resolve an ambiguous name to
// the wrong city (or 404).
type City struct {
	Label string
	Query string
}

// Cities is the fixed selectable set, display order.
var Cities = []City{
	{"Seoul", "Seoul,KR"},
	{"Busan", "Busan,KR"},
	{"Incheon", "Incheon,KR"},
	{"Daegu", "Daegu,KR"},
	{"Daejeon", "Daejeon,KR"},
	{"Gwangju", "Gwangju,KR"},
	{"Ulsan", "Ulsan,KR"},
	{"Suwon", "Suwon,KR"},
	{"Changwon", "Changwon,KR"},
	{"Jeju", "Jeju City,KR"},
}

// QueryFor resolves a city label to its provider query string.
func QueryFor(label string) (string, bool) {
	for _, c := range Cities {
		if c.Label == label {
			return c.Query, true
		}
	}
	return "", false
}
