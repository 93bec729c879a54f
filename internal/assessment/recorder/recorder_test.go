package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

func createTestRecord(sessionID, attemptID string) models.SessionRecord {
	profile := models.NewLearnerProfile()
	_ = profile.Aptitude.Set("logical_reasoning", 82)

	return models.SessionRecord{
		Session: models.AssessmentSession{
			ID:           sessionID,
			UserID:       "user-1",
			AttemptID:    attemptID,
			ClassLevel:   models.Class12th,
			Metrics:      models.PerformanceMetrics{Accuracy: 80, Speed: 40, WeightedScore: 74},
			Profile:      *profile,
			Insights:     models.Insights{Strengths: []string{"Logical reasoning (82%)"}},
			RulesVersion: "2025.06.1",
		},
		Recommendations: models.RecommendationSet{
			ClassLevel:               models.Class12th,
			Primary:                  []models.RecommendationCandidate{{Name: "B.Tech Computer Science", Confidence: 0.91}},
			OverallReasoning:         "B.Tech Computer Science is your strongest match",
			RecommendationConfidence: 0.91,
			RulesVersion:             "2025.06.1",
		},
	}
}

func createTestRecorder(t *testing.T, timeout time.Duration) (*PostgresRecorder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRecorder(db, timeout, logger.NewTestLogger(t)), mock
}

func TestRecord_Success(t *testing.T) {
	rec, mock := createTestRecorder(t, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO assessment_sessions`).
		WithArgs("sess-1", "user-1", "attempt-1", "12th", "completed",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "2025.06.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO student_recommendations`).
		WithArgs(sqlmock.AnyArg(), "sess-1", "user-1", "12th",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"B.Tech Computer Science is your strongest match", 0.91, false, "2025.06.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	receipt, err := rec.Record(context.Background(), createTestRecord("sess-1", "attempt-1"))
	require.NoError(t, err)

	assert.Equal(t, "sess-1", receipt.SessionID)
	_, err = uuid.Parse(receipt.RecommendationID)
	assert.NoError(t, err)
	assert.False(t, receipt.RecordedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_AssignsSessionIDAndNullAttempt(t *testing.T) {
	rec, mock := createTestRecorder(t, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO assessment_sessions`).
		WithArgs(sqlmock.AnyArg(), "user-1", nil, "12th", "completed",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "2025.06.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO student_recommendations`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	receipt, err := rec.Record(context.Background(), createTestRecord("", ""))
	require.NoError(t, err)

	_, err = uuid.Parse(receipt.SessionID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
	}{
		{
			name: "attempt already recorded",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO assessment_sessions`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantCode: apperrors.ErrCodeDuplicateAttempt,
		},
		{
			name: "unique violation",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO assessment_sessions`).WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantCode: apperrors.ErrCodeDuplicateAttempt,
		},
		{
			name: "recommendation insert fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO assessment_sessions`).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO student_recommendations`).WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			wantCode: apperrors.ErrCodePersistenceFailed,
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO assessment_sessions`).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO student_recommendations`).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(errors.New("connection reset"))
			},
			wantCode: apperrors.ErrCodePersistenceFailed,
		},
		{
			name: "begin fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
			},
			wantCode: apperrors.ErrCodePersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, mock := createTestRecorder(t, time.Second)
			tt.setup(mock)

			receipt, err := rec.Record(context.Background(), createTestRecord("sess-1", "attempt-1"))

			assert.Nil(t, receipt)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)

			stdErr, _ := apperrors.As(err)
			assert.False(t, stdErr.Retryable, "persistence errors are never retried")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRecord_Timeout(t *testing.T) {
	rec, mock := createTestRecorder(t, 20*time.Millisecond)

	mock.ExpectBegin().WillDelayFor(500 * time.Millisecond)

	start := time.Now()
	_, err := rec.Record(context.Background(), createTestRecord("sess-1", "attempt-1"))

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePersistenceTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}
