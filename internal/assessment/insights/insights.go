// Package insights turns scores and recommendations into the learner-facing
// summary.
package insights

import (
	"fmt"
	"sort"
	"strings"

	"assessment-engine/internal/models"
)

const (
	StrengthThreshold    = 0.7
	ImprovementThreshold = 0.4
	MaxItems             = 5

	strongCategoryAccuracy = 75.0
	weakCategoryAccuracy   = 50.0
)

type item struct {
	text  string
	score float64
	order int
}

// Build summarises strengths, weaknesses and an overall assessment. Any
// argument may be nil.
func Build(profile *models.LearnerProfile, metrics *models.PerformanceMetrics, set *models.RecommendationSet) models.Insights {
	var strengths, weaknesses []item
	order := 0

	if profile != nil {
		for _, d := range models.Domains {
			spec, _ := models.SpecFor(d)
			vec := profile.Vector(d)
			for _, key := range vec.Keys() {
				norm, _ := vec.Normalized(key)
				text := fmt.Sprintf("%s (%.0f%%)", capitalize(spec.Label(key)), norm*100)
				switch {
				case norm >= StrengthThreshold:
					strengths = append(strengths, item{text, norm, order})
				case norm < ImprovementThreshold:
					weaknesses = append(weaknesses, item{text, norm, order})
				}
				order++
			}
		}
	}

	if metrics != nil {
		categories := make([]string, 0, len(metrics.CategoryBreakdown))
		for c := range metrics.CategoryBreakdown {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			cm := metrics.CategoryBreakdown[c]
			text := fmt.Sprintf("%s questions (%.0f%% correct)", capitalize(strings.ReplaceAll(c, "_", " ")), cm.Accuracy)
			switch {
			case cm.Accuracy >= strongCategoryAccuracy:
				strengths = append(strengths, item{text, cm.Accuracy / 100, order})
			case cm.Accuracy < weakCategoryAccuracy:
				weaknesses = append(weaknesses, item{text, cm.Accuracy / 100, order})
			}
			order++
		}
	}

	return models.Insights{
		Strengths:           pick(strengths, true),
		AreasForImprovement: pick(weaknesses, false),
		OverallAssessment:   overall(metrics, set),
	}
}

func pick(items []item, strongestFirst bool) []string {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			if strongestFirst {
				return items[i].score > items[j].score
			}
			return items[i].score < items[j].score
		}
		return items[i].order < items[j].order
	})
	out := []string{}
	for i := 0; i < len(items) && i < MaxItems; i++ {
		out = append(out, items[i].text)
	}
	return out
}

func overall(metrics *models.PerformanceMetrics, set *models.RecommendationSet) string {
	var parts []string

	if set != nil && set.InsufficientData {
		parts = append(parts, "Insufficient data to build a reliable profile; the recommendations below are general guidance.")
	}

	if metrics != nil {
		if metrics.HasWarning(models.WarningNoAnsweredQuestions) {
			parts = append(parts, "No questions were answered, so test performance could not be assessed.")
		} else {
			parts = append(parts, fmt.Sprintf("%s test performance with a weighted score of %.0f (accuracy %.0f%%, %.0f seconds per question).",
				band(metrics.WeightedScore), metrics.WeightedScore, metrics.Accuracy, metrics.Speed))
		}
	}

	if set != nil && !set.InsufficientData {
		if top, ok := set.Top(); ok {
			parts = append(parts, fmt.Sprintf("%s is the best fit for your profile.", top.Name))
		}
	}

	return strings.Join(parts, " ")
}

func band(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 65:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Developing"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
