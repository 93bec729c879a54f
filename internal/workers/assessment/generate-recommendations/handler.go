// internal/workers/assessment/generate-recommendations/handler.go
package generaterecommendations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assessment-engine/internal/assessment/catalog"
	"assessment-engine/internal/assessment/insights"
	"assessment-engine/internal/assessment/recommender"
	"assessment-engine/internal/common/camunda"
	"assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

const (
	TaskType = "generate-recommendations"
)

// ProfileLookup supplies stored practical constraints and interests.
type ProfileLookup interface {
	Get(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type Handler struct {
	config       *Config
	engine       *recommender.Engine
	profiles     ProfileLookup
	searcher     *catalog.Searcher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler accepts nil profiles and searcher; the worker then relies on
// the job variables alone and skips the pathway lookup.
func NewHandler(config *Config, engine *recommender.Engine, profiles ProfileLookup, searcher *catalog.Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		profiles:     profiles,
		searcher:     searcher,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.StudentClass.Valid() {
		return nil, errors.NewValidationError("invalid recommendation input", []errors.FieldViolation{{
			Field:   "studentClass",
			Code:    "INVALID_ENUM_VALUE",
			Message: fmt.Sprintf("studentClass must be 10th or 12th, got %q", input.StudentClass),
		}})
	}

	constraints := models.PracticalConstraints{}
	if input.PracticalConstraints != nil {
		constraints = *input.PracticalConstraints
	}
	interests := input.Interests
	if h.profiles != nil && input.UserID != "" {
		stored, err := h.profiles.Get(ctx, input.UserID)
		switch {
		case err == nil:
			constraints = constraints.WithDefaults(stored.Constraints)
			if len(interests) == 0 {
				interests = stored.Interests
			}
		case errors.HasCode(err, errors.ErrCodeProfileNotFound):
			h.logger.Debug("no stored profile", map[string]interface{}{"userId": input.UserID})
		default:
			return nil, err
		}
	}

	set, err := h.engine.Recommend(input.LearnerProfile, input.StudentClass, constraints)
	if err != nil {
		return nil, err
	}

	output := &Output{
		Recommendations:          set,
		AIInsights:               insights.Build(input.LearnerProfile, input.PerformanceMetrics, set),
		RecommendationConfidence: set.RecommendationConfidence,
		InsufficientData:         set.InsufficientData,
		RulesVersion:             set.RulesVersion,
		CareerPathways:           []catalog.CareerPathway{},
	}

	if top, ok := set.Top(); ok && h.searcher != nil {
		output.CareerPathways = catalog.Rank(h.searcher.CareerPathways(ctx, top.Stream).Pathways, interests)
	}

	h.logger.Info("recommendations generated", map[string]interface{}{
		"userId":       input.UserID,
		"classLevel":   string(input.StudentClass),
		"confidence":   set.RecommendationConfidence,
		"insufficient": set.InsufficientData,
		"rulesVersion": set.RulesVersion,
	})
	return output, nil
}
