// Package performance computes accuracy, speed and weighted score for an
// answer stream.
package performance

import (
	"fmt"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
)

const (
	AccuracyWeight = 0.7
	SpeedWeight    = 0.3
	// SpeedCeiling caps seconds-per-question before it is turned into a
	// 0-100 speed score.
	SpeedCeiling = 100.0
)

// WeightedScore blends accuracy (percent) with speed (seconds per question).
func WeightedScore(accuracy, speed float64) float64 {
	return accuracy*AccuracyWeight + (SpeedCeiling-min(speed, SpeedCeiling))*SpeedWeight
}

// Calculate derives metrics from validated responses. The accuracy and
// speed denominators are answeredQuestions, not len(responses): skipped
// answers the client counted as answered still count.
func Calculate(responses []models.Response, totalQuestions, answeredQuestions int) (*models.PerformanceMetrics, error) {
	var violations []apperrors.FieldViolation
	violations = append(violations, checkCounters(totalQuestions, answeredQuestions)...)
	if answeredQuestions < len(responses) {
		violations = append(violations, apperrors.FieldViolation{
			Field:   "answered_questions",
			Code:    "COUNT_MISMATCH",
			Message: fmt.Sprintf("answered_questions (%d) is lower than the %d responses submitted", answeredQuestions, len(responses)),
		})
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid test performance counters", violations)
	}

	correct := 0
	totalTime := 0.0
	breakdown := map[string]models.CategoryMetrics{}
	times := map[string]float64{}

	for _, r := range responses {
		cat := breakdown[r.Category]
		cat.Total++
		if r.Correct() {
			cat.Correct++
			correct++
		}
		breakdown[r.Category] = cat
		times[r.Category] += r.TimeTaken
		totalTime += r.TimeTaken
	}

	for name, cat := range breakdown {
		cat.Accuracy = ratio(float64(cat.Correct), cat.Total) * 100
		cat.Speed = ratio(times[name], cat.Total)
		cat.Score = WeightedScore(cat.Accuracy, cat.Speed)
		breakdown[name] = cat
	}

	m := build(totalQuestions, answeredQuestions, correct, totalTime)
	m.CategoryBreakdown = breakdown
	return m, nil
}

// FromCounters derives metrics when only aggregate counters were sent.
func FromCounters(totalQuestions, answeredQuestions, correctAnswers int, totalTimeSeconds float64) (*models.PerformanceMetrics, error) {
	violations := checkCounters(totalQuestions, answeredQuestions)
	if correctAnswers < 0 || correctAnswers > answeredQuestions {
		violations = append(violations, apperrors.FieldViolation{
			Field:   "correct_answers",
			Code:    "OUT_OF_RANGE",
			Message: fmt.Sprintf("correct_answers must be within [0, %d], got %d", max(answeredQuestions, 0), correctAnswers),
		})
	}
	if totalTimeSeconds < 0 {
		violations = append(violations, apperrors.FieldViolation{
			Field:   "total_time_seconds",
			Code:    "NEGATIVE_TIME",
			Message: "total_time_seconds must not be negative",
		})
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid test performance counters", violations)
	}

	m := build(totalQuestions, answeredQuestions, correctAnswers, totalTimeSeconds)
	m.CategoryBreakdown = map[string]models.CategoryMetrics{}
	return m, nil
}

// Evaluate picks the response list when one was submitted and the counters
// otherwise. A counter that disagrees with the responses is flagged, not
// rejected; the responses win.
func Evaluate(tp models.TestPerformance, responses []models.Response) (*models.PerformanceMetrics, error) {
	if len(responses) == 0 {
		return FromCounters(tp.TotalQuestions, tp.AnsweredQuestions, tp.CorrectAnswers, tp.TotalTimeSeconds)
	}

	m, err := Calculate(responses, tp.TotalQuestions, tp.AnsweredQuestions)
	if err != nil {
		return nil, err
	}
	if (tp.CorrectAnswers != 0 && tp.CorrectAnswers != m.CorrectAnswers) ||
		(tp.TotalTimeSeconds != 0 && tp.TotalTimeSeconds != m.TotalTimeSeconds) {
		m.Warnings = append(m.Warnings, models.WarningCountersMismatch)
	}
	return m, nil
}

func checkCounters(total, answered int) []apperrors.FieldViolation {
	var v []apperrors.FieldViolation
	if total < 0 {
		v = append(v, apperrors.FieldViolation{Field: "total_questions", Code: "OUT_OF_RANGE", Message: "total_questions must not be negative"})
	}
	if answered < 0 {
		v = append(v, apperrors.FieldViolation{Field: "answered_questions", Code: "OUT_OF_RANGE", Message: "answered_questions must not be negative"})
	}
	if answered > total {
		v = append(v, apperrors.FieldViolation{
			Field:   "answered_questions",
			Code:    "OUT_OF_RANGE",
			Message: fmt.Sprintf("answered_questions (%d) exceeds total_questions (%d)", answered, total),
		})
	}
	return v
}

func build(total, answered, correct int, totalTime float64) *models.PerformanceMetrics {
	m := &models.PerformanceMetrics{
		TotalQuestions:    total,
		AnsweredQuestions: answered,
		CorrectAnswers:    correct,
		TotalTimeSeconds:  totalTime,
	}
	if answered == 0 {
		// Speed 0 would otherwise earn the full speed component.
		m.Warnings = append(m.Warnings, models.WarningNoAnsweredQuestions)
		return m
	}
	m.Accuracy = ratio(float64(correct), answered) * 100
	m.Speed = ratio(totalTime, answered)
	m.WeightedScore = WeightedScore(m.Accuracy, m.Speed)
	return m
}

func ratio(num float64, den int) float64 {
	if den == 0 {
		return 0
	}
	return num / float64(den)
}
