package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
)

func response(id, category string, seconds float64, correct *bool) models.Response {
	return models.Response{QuestionID: id, Category: category, TimeTaken: seconds, IsCorrect: correct}
}

func yes() *bool { v := true; return &v }
func no() *bool  { v := false; return &v }

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name     string
		accuracy float64
		speed    float64
		want     float64
	}{
		{"80 percent at 60 seconds", 80, 60, 68},
		{"perfect and instant", 100, 0, 100},
		{"speed capped at ceiling", 50, 240, 35},
		{"nothing right, slow", 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WeightedScore(tt.accuracy, tt.speed), 1e-9)
		})
	}
}

func TestFromCounters_ReferenceSubmission(t *testing.T) {
	m, err := FromCounters(30, 30, 24, 1800)
	require.NoError(t, err)

	assert.InDelta(t, 80, m.Accuracy, 1e-9)
	assert.InDelta(t, 60, m.Speed, 1e-9)
	assert.InDelta(t, 68, m.WeightedScore, 1e-9)
	assert.Empty(t, m.Warnings)
	assert.Empty(t, m.CategoryBreakdown)
}

func TestCalculate_NoAnsweredQuestions(t *testing.T) {
	m, err := Calculate(nil, 20, 0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.Accuracy)
	assert.Equal(t, 0.0, m.Speed)
	assert.Equal(t, 0.0, m.WeightedScore)
	assert.True(t, m.HasWarning(models.WarningNoAnsweredQuestions))
	assert.Empty(t, m.CategoryBreakdown)
}

func TestCalculate_CategoryBreakdown(t *testing.T) {
	responses := []models.Response{
		response("q1", "logical_reasoning", 30, yes()),
		response("q2", "logical_reasoning", 50, no()),
		response("q3", "quantitative_skills", 20, yes()),
		response("q4", "quantitative_skills", 40, yes()),
		response("q5", "quantitative_skills", 60, nil),
	}

	m, err := Calculate(responses, 6, 5)
	require.NoError(t, err)

	assert.Equal(t, 3, m.CorrectAnswers)
	assert.InDelta(t, 60, m.Accuracy, 1e-9)
	assert.InDelta(t, 40, m.Speed, 1e-9)
	assert.InDelta(t, 60*0.7+60*0.3, m.WeightedScore, 1e-9)

	require.Len(t, m.CategoryBreakdown, 2, "categories without responses are omitted")
	logical := m.CategoryBreakdown["logical_reasoning"]
	assert.Equal(t, 2, logical.Total)
	assert.Equal(t, 1, logical.Correct)
	assert.InDelta(t, 50, logical.Accuracy, 1e-9)
	assert.InDelta(t, 40, logical.Speed, 1e-9)
	assert.InDelta(t, 50*0.7+60*0.3, logical.Score, 1e-9)

	quant := m.CategoryBreakdown["quantitative_skills"]
	assert.Equal(t, 3, quant.Total)
	assert.Equal(t, 2, quant.Correct)
	assert.InDelta(t, 200.0/3, quant.Accuracy, 1e-9)
	assert.InDelta(t, 40, quant.Speed, 1e-9)
	assert.InDelta(t, 200.0/3*0.7+60*0.3, quant.Score, 1e-9)
}

func TestCalculate_IsDeterministic(t *testing.T) {
	responses := []models.Response{
		response("q1", "memory_attention", 12, yes()),
		response("q2", "logical_reasoning", 18, no()),
	}
	first, err := Calculate(responses, 2, 2)
	require.NoError(t, err)
	second, err := Calculate(responses, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCounterValidation(t *testing.T) {
	tests := []struct {
		name  string
		run   func() error
		field string
	}{
		{"answered exceeds total", func() error { _, err := FromCounters(10, 11, 5, 100); return err }, "answered_questions"},
		{"negative total", func() error { _, err := FromCounters(-1, 0, 0, 0); return err }, "total_questions"},
		{"correct exceeds answered", func() error { _, err := FromCounters(10, 5, 6, 100); return err }, "correct_answers"},
		{"negative time", func() error { _, err := FromCounters(10, 5, 2, -3); return err }, "total_time_seconds"},
		{"fewer answered than responses", func() error {
			_, err := Calculate([]models.Response{response("q1", "logical_reasoning", 5, yes()), response("q2", "logical_reasoning", 5, yes())}, 5, 1)
			return err
		}, "answered_questions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			stdErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
			require.NotEmpty(t, stdErr.Violations)
			assert.Equal(t, tt.field, stdErr.Violations[0].Field)
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("counters only", func(t *testing.T) {
		m, err := Evaluate(models.TestPerformance{TotalQuestions: 30, AnsweredQuestions: 30, CorrectAnswers: 24, TotalTimeSeconds: 1800}, nil)
		require.NoError(t, err)
		assert.InDelta(t, 68, m.WeightedScore, 1e-9)
	})

	t.Run("responses win over disagreeing counters", func(t *testing.T) {
		responses := []models.Response{response("q1", "logical_reasoning", 30, yes()), response("q2", "logical_reasoning", 30, no())}
		m, err := Evaluate(models.TestPerformance{TotalQuestions: 2, AnsweredQuestions: 2, CorrectAnswers: 2}, responses)
		require.NoError(t, err)
		assert.Equal(t, 1, m.CorrectAnswers)
		assert.True(t, m.HasWarning(models.WarningCountersMismatch))
	})
}
