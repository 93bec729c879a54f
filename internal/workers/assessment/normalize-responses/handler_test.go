// internal/workers/assessment/normalize-responses/handler_test.go
package normalizeresponses

import (
	"context"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-engine/internal/assessment/normalizer"
	"assessment-engine/internal/common/config"
	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(config.WorkerConfig{}), normalizer.Categories{"logical_reasoning", "memory_attention"}, logger.NewTestLogger(t))
}

func ptrF(v float64) *float64 { return &v }

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, "10s", LoadConfig(config.WorkerConfig{}).Timeout.String())
	assert.Equal(t, "2.5s", LoadConfig(config.WorkerConfig{Timeout: 2500}).Timeout.String())
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name      string
		responses []models.RawResponse
		wantCount int
		wantCode  apperrors.ErrorCode
	}{
		{
			name: "valid responses",
			responses: []models.RawResponse{
				{QuestionID: "q1", TimeTaken: ptrF(12), Category: "Logical_Reasoning"},
				{QuestionID: "q2", TimeTaken: ptrF(0), Category: "memory_attention"},
			},
			wantCount: 2,
		},
		{
			name:      "no responses",
			wantCount: 0,
		},
		{
			name: "defects are rejected",
			responses: []models.RawResponse{
				{QuestionID: "q1", Category: "logical_reasoning"},
				{QuestionID: "q1", TimeTaken: ptrF(3), Category: "astrology"},
			},
			wantCode: apperrors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)
			out, err := h.Execute(context.Background(), &Input{
				UserID:          "user-1",
				TestPerformance: models.TestPerformance{Responses: tt.responses},
			})

			if tt.wantCode != "" {
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
				stdErr, _ := apperrors.As(err)
				assert.False(t, stdErr.Retryable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, out.ResponseCount)
			assert.Len(t, out.Responses, tt.wantCount)
		})
	}
}

func TestParseInput(t *testing.T) {
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{
		Variables: `{"userId":"user-1","testPerformance":{"total_questions":1,"answered_questions":1,"correct_answers":1,"responses":[{"question_id":"q1","time_taken":4,"category":"memory_attention"}]}}`,
	}}
	input, err := parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, "user-1", input.UserID)
	require.Len(t, input.TestPerformance.Responses, 1)

	_, err = parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{`}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}
