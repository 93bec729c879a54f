// internal/workers/assessment/generate-recommendations/handler_test.go
package generaterecommendations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-engine/internal/assessment/catalog"
	"assessment-engine/internal/assessment/recommender"
	"assessment-engine/internal/common/config"
	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
	"assessment-engine/pkg/registry"
)

type fakeProfiles struct {
	profile *models.StudentProfile
	err     error
	calls   int
}

func (f *fakeProfiles) Get(_ context.Context, _ string) (*models.StudentProfile, error) {
	f.calls++
	return f.profile, f.err
}

func createTestHandler(t *testing.T, profiles ProfileLookup) *Handler {
	t.Helper()
	rules, err := registry.LoadDefault()
	require.NoError(t, err)
	engine, err := recommender.NewEngine(rules)
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(config.WorkerConfig{}), engine, profiles, catalog.NewSearcher(nil, "", 0, log), log)
}

func medicalProfile(t *testing.T) *models.LearnerProfile {
	t.Helper()
	p := models.NewLearnerProfile()
	require.NoError(t, p.Subject.Set("biology", 95))
	require.NoError(t, p.Subject.Set("chemistry", 90))
	require.NoError(t, p.RIASEC.Set("investigative", 0.85))
	require.NoError(t, p.RIASEC.Set("social", 0.8))
	return p
}

func TestHandler_Execute_Success(t *testing.T) {
	h := createTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		UserID:         "user-1",
		StudentClass:   models.Class12th,
		LearnerProfile: medicalProfile(t),
		PerformanceMetrics: &models.PerformanceMetrics{
			Accuracy: 70, Speed: 45, WeightedScore: 65.5,
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, out.Recommendations.Primary)
	top := out.Recommendations.Primary[0]
	assert.Equal(t, top.Confidence, out.RecommendationConfidence)
	assert.Equal(t, h.engine.RulesVersion(), out.RulesVersion)
	assert.False(t, out.InsufficientData)
	assert.NotEmpty(t, out.AIInsights.OverallAssessment)

	for _, p := range out.CareerPathways {
		assert.Equal(t, top.Stream, p.Stream)
	}
}

func TestHandler_Execute_StoredConstraints(t *testing.T) {
	years := 3
	profiles := &fakeProfiles{profile: &models.StudentProfile{
		Constraints: models.PracticalConstraints{FinancialBackground: "low", MaxStudyYears: &years},
	}}

	free, err := createTestHandler(t, nil).Execute(context.Background(), &Input{
		UserID: "user-1", StudentClass: models.Class12th, LearnerProfile: medicalProfile(t),
	})
	require.NoError(t, err)
	constrained, err := createTestHandler(t, profiles).Execute(context.Background(), &Input{
		UserID: "user-1", StudentClass: models.Class12th, LearnerProfile: medicalProfile(t),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, profiles.calls)
	confidence := func(set *models.RecommendationSet, name string) float64 {
		for _, c := range set.All() {
			if c.Name == name {
				return c.Confidence
			}
		}
		return -1
	}
	assert.Less(t, confidence(constrained.Recommendations, "MBBS"), confidence(free.Recommendations, "MBBS"))
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		profiles  ProfileLookup
		class     models.ClassLevel
		wantCode  apperrors.ErrorCode
		retryable bool
	}{
		{
			name:     "unknown class",
			class:    "11th",
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:      "profile lookup failure is retryable",
			profiles:  &fakeProfiles{err: apperrors.NewProfileLookupFailedError(errors.New("timeout"))},
			class:     models.Class10th,
			wantCode:  apperrors.ErrCodeProfileLookupFailed,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := createTestHandler(t, tt.profiles).Execute(context.Background(), &Input{
				UserID:         "user-1",
				StudentClass:   tt.class,
				LearnerProfile: medicalProfile(t),
			})
			stdErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestHandler_Execute_MissingProfileIsTolerated(t *testing.T) {
	profiles := &fakeProfiles{err: apperrors.NewProfileNotFoundError("user-1")}
	out, err := createTestHandler(t, profiles).Execute(context.Background(), &Input{
		UserID: "user-1", StudentClass: models.Class10th,
	})
	require.NoError(t, err)
	assert.True(t, out.InsufficientData)
}

func TestHandler_Execute_RanksPathwaysByInterests(t *testing.T) {
	tests := []struct {
		name          string
		submitted     []string
		stored        []string
		wantInterests []string
	}{
		{"job variables", []string{"empathy"}, nil, []string{"empathy"}},
		{"stored profile", nil, []string{"medical knowledge"}, []string{"medical knowledge"}},
		{"job variables win", []string{"problem"}, []string{"empathy"}, []string{"problem"}},
		{"none", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &fakeProfiles{profile: &models.StudentProfile{Interests: tt.stored}}
			out, err := createTestHandler(t, profiles).Execute(context.Background(), &Input{
				UserID:         "user-1",
				StudentClass:   models.Class12th,
				LearnerProfile: medicalProfile(t),
				Interests:      tt.submitted,
			})
			require.NoError(t, err)

			top, ok := out.Recommendations.Top()
			require.True(t, ok)
			want := catalog.Rank(catalog.EmbeddedPathways(top.Stream), tt.wantInterests)
			assert.Equal(t, want, out.CareerPathways)
			assert.LessOrEqual(t, len(out.CareerPathways), catalog.MaxRankedPathways)
		})
	}
}
