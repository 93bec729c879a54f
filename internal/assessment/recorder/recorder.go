// Package recorder persists scored assessment sessions and reads learner
// profiles.
package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

const uniqueViolation = "23505"

// Recorder stores a session and its recommendations atomically.
type Recorder interface {
	Record(ctx context.Context, rec models.SessionRecord) (*models.SessionReceipt, error)
}

const insertSessionQuery = `INSERT INTO assessment_sessions
	(id, user_id, attempt_id, class_level, status, metrics, profile, insights, rules_version, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (user_id, attempt_id) DO NOTHING`

const insertRecommendationsQuery = `INSERT INTO student_recommendations
	(id, session_id, user_id, class_level, primary_recommendations, secondary_recommendations,
	 backup_recommendations, overall_reasoning, confidence, insufficient_data, rules_version, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// PostgresRecorder writes sessions in one transaction bounded by timeout.
// It never retries: a failed write is returned to the caller as-is.
type PostgresRecorder struct {
	db      *sql.DB
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time
}

func NewPostgresRecorder(db *sql.DB, timeout time.Duration, log logger.Logger) *PostgresRecorder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresRecorder{
		db:      db,
		timeout: timeout,
		logger:  logger.Component(log, "recorder"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record assigns missing ids, then inserts the session and the
// recommendation row. A second session for the same (user, attempt) pair is
// rejected with DUPLICATE_ATTEMPT and nothing is written.
func (r *PostgresRecorder) Record(ctx context.Context, rec models.SessionRecord) (*models.SessionReceipt, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	session := rec.Session
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionCompleted
	}
	recordedAt := r.now()
	if session.CompletedAt.IsZero() {
		session.CompletedAt = recordedAt
	}
	recommendationID := uuid.NewString()

	metrics, err := json.Marshal(session.Metrics)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError(fmt.Errorf("encode metrics: %w", err))
	}
	profile, err := json.Marshal(&session.Profile)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError(fmt.Errorf("encode profile: %w", err))
	}
	insights, err := json.Marshal(session.Insights)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError(fmt.Errorf("encode insights: %w", err))
	}
	set := rec.Recommendations
	tiers := make([][]byte, 0, 3)
	for _, tier := range [][]models.RecommendationCandidate{set.Primary, set.Secondary, set.Backup} {
		if tier == nil {
			tier = []models.RecommendationCandidate{}
		}
		b, err := json.Marshal(tier)
		if err != nil {
			return nil, apperrors.NewPersistenceFailedError(fmt.Errorf("encode recommendations: %w", err))
		}
		tiers = append(tiers, b)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.classify(ctx, session, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, insertSessionQuery,
		session.ID,
		session.UserID,
		sql.NullString{String: session.AttemptID, Valid: session.AttemptID != ""},
		string(session.ClassLevel),
		string(session.Status),
		metrics,
		profile,
		insights,
		session.RulesVersion,
		session.CompletedAt,
	)
	if err != nil {
		return nil, r.classify(ctx, session, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, r.classify(ctx, session, err)
	}
	if affected == 0 {
		err = apperrors.NewDuplicateAttemptError(session.UserID, session.AttemptID)
		r.logger.Warn("duplicate assessment attempt", map[string]interface{}{
			"userId":    session.UserID,
			"attemptId": session.AttemptID,
		})
		return nil, err
	}

	_, err = tx.ExecContext(ctx, insertRecommendationsQuery,
		recommendationID,
		session.ID,
		session.UserID,
		string(session.ClassLevel),
		tiers[0],
		tiers[1],
		tiers[2],
		set.OverallReasoning,
		set.RecommendationConfidence,
		set.InsufficientData,
		set.RulesVersion,
		recordedAt,
	)
	if err != nil {
		return nil, r.classify(ctx, session, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, r.classify(ctx, session, err)
	}

	r.logger.Info("assessment session recorded", map[string]interface{}{
		"sessionId":        session.ID,
		"recommendationId": recommendationID,
		"userId":           session.UserID,
	})

	return &models.SessionReceipt{
		SessionID:        session.ID,
		RecommendationID: recommendationID,
		RecordedAt:       recordedAt,
	}, nil
}

func (r *PostgresRecorder) classify(ctx context.Context, session models.AssessmentSession, err error) error {
	var pqErr *pq.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		r.logger.Error("session persistence timed out", map[string]interface{}{
			"sessionId": session.ID,
			"timeout":   r.timeout.String(),
			"error":     err,
		})
		return apperrors.NewPersistenceTimeoutError(err)
	case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		return apperrors.NewDuplicateAttemptError(session.UserID, session.AttemptID)
	default:
		r.logger.Error("session persistence failed", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err,
		})
		return apperrors.NewPersistenceFailedError(err)
	}
}
