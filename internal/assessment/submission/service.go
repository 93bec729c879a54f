// Package submission runs a learner's submission through the scoring
// pipeline and records the outcome.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"assessment-engine/internal/assessment/aggregator"
	"assessment-engine/internal/assessment/catalog"
	"assessment-engine/internal/assessment/insights"
	"assessment-engine/internal/assessment/normalizer"
	"assessment-engine/internal/assessment/performance"
	"assessment-engine/internal/assessment/recommender"
	"assessment-engine/internal/assessment/recorder"
	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/common/metrics"
	"assessment-engine/internal/common/observability"
	"assessment-engine/internal/common/validation"
	"assessment-engine/internal/models"
)

// ProfileLookup returns PROFILE_NOT_FOUND for unknown learners.
type ProfileLookup interface {
	Get(ctx context.Context, userID string) (*models.StudentProfile, error)
}

// PathwayFinder looks up the career pathways of a stream.
type PathwayFinder interface {
	CareerPathways(ctx context.Context, stream string) *catalog.PathwayResult
}

// Publisher announces recorded sessions. Failures are logged only.
type Publisher interface {
	PublishAssessmentRecorded(ctx context.Context, userID string, receipt *models.SessionReceipt) error
}

type Service struct {
	engine         *recommender.Engine
	profiles       ProfileLookup
	recorder       recorder.Recorder
	publisher      Publisher
	pathways       PathwayFinder
	requireProfile bool
	schema         *validation.Schema
	resultSchema   *validation.Schema
	obs            *observability.Observability
	logger         logger.Logger
	now            func() time.Time
}

type Option func(*Service)

// WithProfiles enables the learner profile lookup. When required is true an
// unknown learner is rejected with PROFILE_NOT_FOUND.
func WithProfiles(p ProfileLookup, required bool) Option {
	return func(s *Service) {
		s.profiles = p
		s.requireProfile = required
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCatalog ranks the career pathways of the top recommendation against
// the learner's interests.
func WithCatalog(f PathwayFinder) Option {
	return func(s *Service) { s.pathways = f }
}

func WithObservability(o *observability.Observability) Option {
	return func(s *Service) { s.obs = o }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(engine *recommender.Engine, rec recorder.Recorder, opts ...Option) (*Service, error) {
	if engine == nil || rec == nil {
		return nil, fmt.Errorf("submission service needs an engine and a recorder")
	}
	schema, err := validation.Builtin(validation.SubmissionSchemaName)
	if err != nil {
		return nil, err
	}
	resultSchema, err := validation.Builtin(validation.ResultSchemaName)
	if err != nil {
		return nil, err
	}

	s := &Service{
		engine:       engine,
		recorder:     rec,
		schema:       schema,
		resultSchema: resultSchema,
		logger:       logger.NewNoOpLogger(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.Component(s.logger, "submission")
	return s, nil
}

func (s *Service) Engine() *recommender.Engine {
	return s.engine
}

// SubmitJSON validates the raw request against the submission schema
// before decoding it, so every structural problem is reported together.
func (s *Service) SubmitJSON(ctx context.Context, body []byte) (*models.AssessmentResult, error) {
	if err := s.schema.ValidateBytes(body).Err("submission is invalid"); err != nil {
		s.count("unknown", err)
		return nil, err
	}

	var sub models.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		err = apperrors.NewValidationError("submission is invalid", []apperrors.FieldViolation{{
			Field: "", Code: "INVALID_JSON", Message: err.Error(),
		}})
		s.count("unknown", err)
		return nil, err
	}
	return s.Submit(ctx, &sub)
}

// Submit scores and records one submission. Nothing is persisted unless
// every stage succeeds; a persistence failure discards the result.
func (s *Service) Submit(ctx context.Context, sub *models.Submission) (result *models.AssessmentResult, err error) {
	class := "unknown"
	if sub != nil && sub.StudentClass.Valid() {
		class = string(sub.StudentClass)
	}

	ctx, span := s.obs.StartSpan(ctx, "assessment.submit", attribute.String("class_level", class))
	defer func() {
		observability.EndSpan(span, err)
		s.count(class, err)
	}()

	if err = checkRequired(sub); err != nil {
		return nil, err
	}

	profile, err := s.lookupProfile(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}

	scored, err := s.Score(ctx, sub, profile)
	if err != nil {
		return nil, err
	}

	var receipt *models.SessionReceipt
	err = s.stage(ctx, "record", func(ctx context.Context) error {
		var recErr error
		receipt, recErr = s.recorder.Record(ctx, models.SessionRecord{
			Session: models.AssessmentSession{
				UserID:       sub.UserID,
				AttemptID:    sub.AttemptID,
				ClassLevel:   sub.StudentClass,
				Status:       models.SessionCompleted,
				Metrics:      *scored.Metrics,
				Profile:      *scored.Profile,
				Insights:     scored.Insights,
				RulesVersion: scored.Recommendations.RulesVersion,
				CompletedAt:  s.now(),
			},
			Recommendations: *scored.Recommendations,
		})
		return recErr
	})
	if err != nil {
		s.logger.Error("assessment not recorded", map[string]interface{}{
			"userId":    sub.UserID,
			"attemptId": sub.AttemptID,
			"error":     err,
		})
		return nil, err
	}

	if s.publisher != nil {
		if pubErr := s.publisher.PublishAssessmentRecorded(ctx, sub.UserID, receipt); pubErr != nil {
			s.logger.Warn("failed to publish assessment-recorded message", map[string]interface{}{
				"sessionId": receipt.SessionID,
				"error":     pubErr,
			})
		}
	}

	result = &models.AssessmentResult{
		SessionID:       receipt.SessionID,
		StudentClass:    sub.StudentClass,
		RecommendedPath: scored.Recommendations.All(),
		Tiers:           *scored.Recommendations,
		CareerPathways:  scored.CareerPathways,
		TestPerformance: *scored.Metrics,
		AIInsights:      scored.Insights,
	}

	if check := s.resultSchema.Validate(result); !check.Valid {
		s.logger.Error("assessment result does not match its schema", map[string]interface{}{
			"sessionId": receipt.SessionID,
			"errors":    strings.Join(check.GetErrorMessages(), "; "),
		})
	}

	s.logger.Info("assessment scored", map[string]interface{}{
		"sessionId":    receipt.SessionID,
		"userId":       sub.UserID,
		"classLevel":   class,
		"confidence":   scored.Recommendations.RecommendationConfidence,
		"rulesVersion": scored.Recommendations.RulesVersion,
	})
	return result, nil
}

// Scored is the pure output of the pipeline, before persistence.
type Scored struct {
	Metrics         *models.PerformanceMetrics
	Profile         *models.LearnerProfile
	Recommendations *models.RecommendationSet
	Insights        models.Insights
	CareerPathways  []models.CareerPathway
}

// Score runs normalization, metrics, aggregation, recommendation and
// insights. Validation problems from all input sections are merged into a
// single VALIDATION_FAILED error. stored may be nil.
func (s *Service) Score(ctx context.Context, sub *models.Submission, stored *models.StudentProfile) (*Scored, error) {
	if err := checkRequired(sub); err != nil {
		return nil, err
	}

	var (
		violations []apperrors.FieldViolation
		responses  []models.Response
		metricsOut *models.PerformanceMetrics
		profile    *models.LearnerProfile
	)

	collect := func(prefix string, err error) error {
		if err == nil {
			return nil
		}
		stdErr, ok := apperrors.As(err)
		if !ok || stdErr.Code != apperrors.ErrCodeValidationFailed {
			return err
		}
		for _, v := range stdErr.Violations {
			if prefix != "" && !strings.HasPrefix(v.Field, prefix) {
				v.Field = prefix + v.Field
			}
			violations = append(violations, v)
		}
		return nil
	}

	err := s.stage(ctx, "normalize", func(context.Context) error {
		var err error
		responses, err = normalizer.Normalize(sub.TestPerformance.Responses, s.engine.Rules())
		return collect("test_performance.", err)
	})
	if err != nil {
		return nil, err
	}

	// Metrics are only computed from a fully normalized answer stream.
	if len(violations) == 0 {
		err = s.stage(ctx, "metrics", func(context.Context) error {
			var err error
			metricsOut, err = performance.Evaluate(sub.TestPerformance, responses)
			return collect("test_performance.", err)
		})
		if err != nil {
			return nil, err
		}
	}

	err = s.stage(ctx, "aggregate", func(context.Context) error {
		var err error
		profile, err = aggregator.Aggregate(sub.AssessmentData)
		return collect("", err)
	})
	if err != nil {
		return nil, err
	}

	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("submission has %d invalid field(s)", len(violations)), violations)
	}

	constraints := models.PracticalConstraints{}
	if sub.AssessmentData.PracticalConstraints != nil {
		constraints = *sub.AssessmentData.PracticalConstraints
	}
	if stored != nil {
		constraints = constraints.WithDefaults(stored.Constraints)
	}

	var set *models.RecommendationSet
	err = s.stage(ctx, "recommend", func(context.Context) error {
		var err error
		set, err = s.engine.Recommend(profile, sub.StudentClass, constraints)
		return err
	})
	if err != nil {
		return nil, err
	}

	if top, ok := set.Top(); ok {
		metrics.RecommendationConfidence.WithLabelValues(string(sub.StudentClass)).Observe(top.Confidence)
	}
	if set.InsufficientData {
		metrics.InsufficientDataTotal.WithLabelValues(string(sub.StudentClass)).Inc()
	}

	var summary models.Insights
	_ = s.stage(ctx, "insights", func(context.Context) error {
		summary = insights.Build(profile, metricsOut, set)
		return nil
	})

	var pathways []models.CareerPathway
	if top, ok := set.Top(); ok && s.pathways != nil {
		interests := sub.Interests
		if len(interests) == 0 && stored != nil {
			interests = stored.Interests
		}
		_ = s.stage(ctx, "pathways", func(ctx context.Context) error {
			found := s.pathways.CareerPathways(ctx, top.Stream)
			pathways = catalog.Rank(found.Pathways, interests)
			return nil
		})
	}

	return &Scored{
		Metrics:         metricsOut,
		Profile:         profile,
		Recommendations: set,
		Insights:        summary,
		CareerPathways:  pathways,
	}, nil
}

func (s *Service) lookupProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if s.profiles == nil {
		return nil, nil
	}

	var profile *models.StudentProfile
	err := s.stage(ctx, "profile", func(ctx context.Context) error {
		var err error
		profile, err = s.profiles.Get(ctx, userID)
		return err
	})
	if err == nil {
		return profile, nil
	}
	if apperrors.HasCode(err, apperrors.ErrCodeProfileNotFound) && !s.requireProfile {
		s.logger.Debug("no stored profile, scoring without it", map[string]interface{}{"userId": userID})
		return nil, nil
	}
	return nil, err
}

func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	ctx, span := s.obs.StartSpan(ctx, "assessment."+name)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewInternalError(fmt.Errorf("panic in %s stage: %v", name, r))
		}
		metrics.AssessmentStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		observability.EndSpan(span, err)
	}()
	return fn(ctx)
}

func (s *Service) count(class string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.Normalize(err).Code)
	}
	metrics.AssessmentSubmissions.WithLabelValues(class, outcome).Inc()
	s.obs.RecordSubmission(context.Background(), class, outcome)
}

func checkRequired(sub *models.Submission) error {
	if sub == nil {
		return apperrors.NewValidationError("submission is invalid", []apperrors.FieldViolation{{
			Field: "", Code: "REQUIRED_FIELD_MISSING", Message: "submission body is required",
		}})
	}
	var v []apperrors.FieldViolation
	if strings.TrimSpace(sub.UserID) == "" {
		v = append(v, apperrors.FieldViolation{Field: "user_id", Code: "REQUIRED_FIELD_MISSING", Message: "user_id is required"})
	}
	if !sub.StudentClass.Valid() {
		v = append(v, apperrors.FieldViolation{
			Field:   "student_class",
			Code:    "INVALID_ENUM_VALUE",
			Message: fmt.Sprintf("student_class must be 10th or 12th, got %q", sub.StudentClass),
		})
	}
	if len(v) > 0 {
		return apperrors.NewValidationError("submission is invalid", v)
	}
	return nil
}
