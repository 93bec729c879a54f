// internal/workers/assessment/calculate-performance-metrics/handler.go
package calculateperformancemetrics

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assessment-engine/internal/assessment/performance"
	"assessment-engine/internal/common/camunda"
	"assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
)

const (
	TaskType = "calculate-performance-metrics"
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
	m, err := performance.Evaluate(input.TestPerformance, input.Responses)
	if err != nil {
		return nil, err
	}

	h.logger.Info("performance metrics calculated", map[string]interface{}{
		"userId":        input.UserID,
		"accuracy":      m.Accuracy,
		"speed":         m.Speed,
		"weightedScore": m.WeightedScore,
		"warnings":      m.Warnings,
	})

	return &Output{
		PerformanceMetrics: m,
		WeightedScore:      m.WeightedScore,
		HasWarnings:        len(m.Warnings) > 0,
	}, nil
}
