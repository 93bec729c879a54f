// Package interests scores free-text learner interests against keyword
// categories.
package interests

import (
	"sort"
	"strings"
)

type Category string

const (
	Technical  Category = "technical"
	Creative   Category = "creative"
	Social     Category = "social"
	Analytical Category = "analytical"
	Practical  Category = "practical"
)

var Categories = []Category{Technical, Creative, Social, Analytical, Practical}

var keywords = map[Category][]string{
	Technical:  {"programming", "mathematics", "science", "technology", "computer"},
	Creative:   {"art", "design", "music", "writing", "photography"},
	Social:     {"leadership", "communication", "public speaking", "teamwork"},
	Analytical: {"research", "problem solving", "data analysis", "statistics"},
	Practical:  {"hands-on", "mechanical", "construction", "engineering"},
}

// Analyze returns, per category, the share of interests that mention one of
// its keywords. One interest can count towards several categories.
func Analyze(interests []string) map[Category]float64 {
	scores := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		scores[c] = 0
	}
	if len(interests) == 0 {
		return scores
	}

	for _, c := range Categories {
		matches := 0
		for _, interest := range interests {
			if mentions(strings.ToLower(interest), keywords[c]) {
				matches++
			}
		}
		scores[c] = float64(matches) / float64(len(interests))
	}
	return scores
}

func mentions(interest string, words []string) bool {
	for _, w := range words {
		if strings.Contains(interest, w) {
			return true
		}
	}
	return false
}

// StreamScore is one stream's affinity from interests alone.
type StreamScore struct {
	Stream string  `json:"stream"`
	Score  float64 `json:"score"`
}

var streamMix = []struct {
	stream string
	parts  [2]Category
}{
	{"science", [2]Category{Technical, Analytical}},
	{"engineering", [2]Category{Technical, Practical}},
	{"medical", [2]Category{Analytical, Social}},
	{"commerce", [2]Category{Analytical, Social}},
	{"arts", [2]Category{Creative, Social}},
}

// StreamAffinity sums the two interest categories behind each stream and
// ranks the streams, highest first. Ties keep priority order.
func StreamAffinity(scores map[Category]float64) []StreamScore {
	out := make([]StreamScore, 0, len(streamMix))
	for _, m := range streamMix {
		out = append(out, StreamScore{Stream: m.stream, Score: scores[m.parts[0]] + scores[m.parts[1]]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
