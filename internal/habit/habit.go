package habit

import "math"

// Definition is a single tracked habit. The order of Defaults is the display
// order everywhere a habit list is rendered.
type Definition struct {
	Name   string
	Symbol string
}

// Defaults is the fixed five-habit set.
var Defaults = []Definition{
	{Name: "기상 미션", Symbol: "⏰"},
	{Name: "물 마시기", Symbol: "💧"},
	{Name: "공부/독서", Symbol: "📚"},
	{Name: "운동하기", Symbol: "🏃"},
	{Name: "수면", Symbol: "😴"},
}

// CountCompleted counts the checked flags over the default habit set.
// Names not in the set are ignored.
func CountCompleted(checked map[string]bool) int {
	n := 0
	for _, def := range Defaults {
		if checked[def.Name] {
			n++
		}
	}
	return n
}

// ComputeRate returns the completion percentage rounded to 1 decimal,
// e.g. 3 of 5 -> 60.0. Callers must keep 0 <= completed <= total.
func ComputeRate(completed, total int) float64 {
	return math.Round(float64(completed)/float64(total)*1000) / 10
}
