// internal/workers/assessment/calculate-performance-metrics/handler_test.go
package calculateperformancemetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-engine/internal/common/config"
	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

func boolPtr(v bool) *bool { return &v }

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name         string
		input        *Input
		wantWeighted float64
		wantWarnings []string
		wantErr      bool
	}{
		{
			name: "responses win over counters",
			input: &Input{
				TestPerformance: models.TestPerformance{TotalQuestions: 4, AnsweredQuestions: 2, CorrectAnswers: 2},
				Responses: []models.Response{
					{QuestionID: "q1", TimeTaken: 10, IsCorrect: boolPtr(true), Category: "logical_reasoning"},
					{QuestionID: "q2", TimeTaken: 30, IsCorrect: boolPtr(false), Category: "logical_reasoning"},
				},
			},
			// accuracy 50, speed 20: 35 + 24
			wantWeighted: 59,
			wantWarnings: []string{models.WarningCountersMismatch},
		},
		{
			name: "counters only",
			input: &Input{
				TestPerformance: models.TestPerformance{TotalQuestions: 10, AnsweredQuestions: 10, CorrectAnswers: 8, TotalTimeSeconds: 400},
			},
			// accuracy 80, speed 40: 56 + 18
			wantWeighted: 74,
		},
		{
			name: "nothing answered",
			input: &Input{
				TestPerformance: models.TestPerformance{TotalQuestions: 10},
			},
			wantWeighted: 0,
			wantWarnings: []string{models.WarningNoAnsweredQuestions},
		},
		{
			name: "answered exceeds total",
			input: &Input{
				TestPerformance: models.TestPerformance{TotalQuestions: 1, AnsweredQuestions: 3},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(config.WorkerConfig{}), logger.NewTestLogger(t))
			out, err := h.Execute(context.Background(), tt.input)

			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantWeighted, out.WeightedScore, 1e-9)
			assert.Equal(t, tt.wantWarnings, out.PerformanceMetrics.Warnings)
			assert.Equal(t, len(tt.wantWarnings) > 0, out.HasWarnings)
		})
	}
}
