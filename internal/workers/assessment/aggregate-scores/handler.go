// internal/workers/assessment/aggregate-scores/handler.go
package aggregatescores

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assessment-engine/internal/assessment/aggregator"
	"assessment-engine/internal/common/camunda"
	"assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

const (
	TaskType = "aggregate-scores"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	profile, err := aggregator.Aggregate(input.AssessmentData)
	if err != nil {
		return nil, err
	}

	h.logger.Info("scores aggregated", map[string]interface{}{
		"userId":   input.UserID,
		"dominant": profile.Dominant,
		"empty":    profile.IsEmpty(),
	})

	return &Output{
		LearnerProfile:   profile,
		DominantAptitude: profile.Dominant[models.DomainAptitude],
		DominantInterest: profile.Dominant[models.DomainRIASEC],
		InsufficientData: profile.IsEmpty(),
	}, nil
}
