// internal/workers/assessment/record-assessment-session/handler.go
package recordassessmentsession

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assessment-engine/internal/assessment/recorder"
	"assessment-engine/internal/common/camunda"
	"assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

const (
	TaskType = "record-assessment-session"
)

// Handler persists a scored session. Its persistence errors are never
// retryable: a retried insert would record the attempt a second time.
type Handler struct {
	config       *Config
	recorder     recorder.Recorder
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, rec recorder.Recorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		recorder:     rec,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		camunda.FailJob(ctx, client, job, TaskType, errors.NewInvalidInputError("parse input: "+err.Error()), h.errorHandler)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		camunda.FailJob(ctx, client, job, TaskType, err, h.errorHandler)
		return
	}

	_ = camunda.CompleteJob(ctx, client, job, TaskType, output, h.logger)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if v := checkInput(input); len(v) > 0 {
		return nil, errors.NewValidationError("session cannot be recorded", v)
	}

	profile := input.LearnerProfile
	if profile == nil {
		profile = models.NewLearnerProfile()
	}

	receipt, err := h.recorder.Record(ctx, models.SessionRecord{
		Session: models.AssessmentSession{
			UserID:       input.UserID,
			AttemptID:    input.AttemptID,
			ClassLevel:   input.StudentClass,
			Status:       models.SessionCompleted,
			Metrics:      *input.PerformanceMetrics,
			Profile:      *profile,
			Insights:     input.AIInsights,
			RulesVersion: input.Recommendations.RulesVersion,
			CompletedAt:  h.now(),
		},
		Recommendations: *input.Recommendations,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("assessment session recorded", map[string]interface{}{
		"userId":    input.UserID,
		"sessionId": receipt.SessionID,
	})
	return &Output{
		SessionID:        receipt.SessionID,
		RecommendationID: receipt.RecommendationID,
		RecordedAt:       receipt.RecordedAt,
	}, nil
}

func checkInput(input *Input) []errors.FieldViolation {
	var v []errors.FieldViolation
	if strings.TrimSpace(input.UserID) == "" {
		v = append(v, errors.FieldViolation{Field: "userId", Code: "REQUIRED_FIELD_MISSING", Message: "userId is required"})
	}
	if !input.StudentClass.Valid() {
		v = append(v, errors.FieldViolation{Field: "studentClass", Code: "INVALID_ENUM_VALUE", Message: "studentClass must be 10th or 12th"})
	}
	if input.PerformanceMetrics == nil {
		v = append(v, errors.FieldViolation{Field: "performanceMetrics", Code: "REQUIRED_FIELD_MISSING", Message: "performanceMetrics is required"})
	}
	if input.Recommendations == nil {
		v = append(v, errors.FieldViolation{Field: "recommendations", Code: "REQUIRED_FIELD_MISSING", Message: "recommendations is required"})
	}
	return v
}
