package recommender

import (
	"fmt"
	"strings"

	"assessment-engine/internal/models"
)

const singleSignalTemplate = "Your {{signals}} supports {{name}}."

// fillTemplate substitutes the candidate name and up to two learner signals
// into a reasoning template.
func fillTemplate(tmpl, name string, signals []models.SignalValue) string {
	if len(signals) < 2 && strings.Contains(tmpl, "{{second_") {
		tmpl = singleSignalTemplate
	}

	var top, topValue, second, secondValue string
	phrases := make([]string, 0, len(signals))
	for i, s := range signals {
		label, value := s.Label, formatSignal(s)
		phrases = append(phrases, fmt.Sprintf("%s (%s)", label, value))
		switch i {
		case 0:
			top, topValue = label, value
		case 1:
			second, secondValue = label, value
		}
	}

	return strings.NewReplacer(
		"{{name}}", name,
		"{{signals}}", strings.Join(phrases, " and "),
		"{{top_signal}}", top,
		"{{top_value}}", topValue,
		"{{second_signal}}", second,
		"{{second_value}}", secondValue,
	).Replace(tmpl)
}

// formatSignal renders a value as a percentage of its domain scale.
func formatSignal(s models.SignalValue) string {
	spec, ok := models.SpecFor(s.Domain)
	if !ok || spec.Max == 0 {
		return fmt.Sprintf("%g", s.Value)
	}
	return fmt.Sprintf("%.0f%%", s.Value/spec.Max*100)
}

func (e *Engine) overallReasoning(set *models.RecommendationSet) string {
	top, ok := set.Top()
	if !ok {
		return "No recommendations are available for this class level."
	}

	var b strings.Builder
	if set.InsufficientData {
		fmt.Fprintf(&b, "Insufficient data: the assessment produced no usable scores, so %s is suggested on general suitability only. "+
			"Complete the aptitude and interest sections for a personalised recommendation.", top.Name)
	} else {
		fmt.Fprintf(&b, "%s is your strongest match at %.0f%% confidence", top.Name, top.Confidence*100)
		if len(top.Signals) > 0 {
			labels := make([]string, len(top.Signals))
			for i, s := range top.Signals {
				labels[i] = s.Label
			}
			fmt.Fprintf(&b, ", driven by your %s", strings.Join(labels, " and "))
		}
		b.WriteString(".")
		if len(set.Primary) > 1 {
			others := make([]string, 0, len(set.Primary)-1)
			for _, c := range set.Primary[1:] {
				others = append(others, c.Name)
			}
			fmt.Fprintf(&b, " %s are also strong options.", strings.Join(others, " and "))
		}
	}

	if top.Confidence < e.rules.LowConfidenceThreshold {
		b.WriteString(" Your results support more than one direction, so explore multiple paths before deciding.")
	}
	return b.String()
}
