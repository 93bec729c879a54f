// internal/workers/assessment/normalize-responses/handler.go
package normalizeresponses

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assessment-engine/internal/assessment/normalizer"
	"assessment-engine/internal/common/camunda"
	"assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
)

const (
	TaskType = "normalize-responses"
)

type Handler struct {
	config       *Config
	taxonomy     normalizer.Taxonomy
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, taxonomy normalizer.Taxonomy, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		taxonomy:     taxonomy,
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

	input, err := parseInput(job)
	if err != nil {
		camunda.FailJob(ctx, client, job, TaskType, err, h.errorHandler)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		camunda.FailJob(ctx, client, job, TaskType, err, h.errorHandler)
		return
	}

	_ = camunda.CompleteJob(ctx, client, job, TaskType, output, h.logger)
}

func parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError("parse input: " + err.Error())
	}
	return &input, nil
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	responses, err := normalizer.Normalize(input.TestPerformance.Responses, h.taxonomy)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("responses normalized", map[string]interface{}{
		"userId": input.UserID,
		"count":  len(responses),
	})
	return &Output{Responses: responses, ResponseCount: len(responses)}, nil
}
