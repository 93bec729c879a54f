package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
)

func TestAggregate_AveragesSameDimension(t *testing.T) {
	data := models.AssessmentData{
		AptitudeScores: models.SampleSet{
			"logical_reasoning":   {0.8, 0.6, 1.0},
			"quantitative_skills": {0.9},
		},
		RIASECScores: models.SampleSet{
			"investigative": {0.7, 0.9},
			"artistic":      {0.2},
		},
		SubjectPerformance: models.SampleSet{
			"mathematics": {88, 92},
		},
	}

	profile, err := Aggregate(data)
	require.NoError(t, err)

	v, ok := profile.Aptitude.Get("logical_reasoning")
	require.True(t, ok)
	assert.InDelta(t, 80, v, 1e-9, "aptitude items are 0-1 and land on 0-100")

	v, ok = profile.RIASEC.Get("investigative")
	require.True(t, ok)
	assert.InDelta(t, 0.8, v, 1e-9)

	v, ok = profile.Subject.Get("mathematics")
	require.True(t, ok)
	assert.InDelta(t, 90, v, 1e-9)

	assert.Equal(t, "quantitative_skills", profile.Dominant[models.DomainAptitude])
	assert.Equal(t, "investigative", profile.Dominant[models.DomainRIASEC])
	assert.Equal(t, "mathematics", profile.Dominant[models.DomainSubject])
}

func TestAggregate_MissingDimensionsStayAbsent(t *testing.T) {
	profile, err := Aggregate(models.AssessmentData{
		RIASECScores: models.SampleSet{"social": {0.4}},
	})
	require.NoError(t, err)

	_, ok := profile.RIASEC.Get("realistic")
	assert.False(t, ok)
	assert.Equal(t, 0, profile.Aptitude.Len())
	assert.Equal(t, 0, profile.Personality.Len())

	_, hasDominant := profile.Dominant[models.DomainAptitude]
	assert.False(t, hasDominant, "empty domains have no dominant dimension")
}

func TestAggregate_EmptyInput(t *testing.T) {
	profile, err := Aggregate(models.AssessmentData{})
	require.NoError(t, err)
	assert.True(t, profile.IsEmpty())
	assert.Empty(t, profile.Dominant)
}

func TestAggregate_DominantTieUsesDeclaredOrder(t *testing.T) {
	profile, err := Aggregate(models.AssessmentData{
		PersonalityScores: models.SampleSet{
			"judging_perceiving":        {0.6},
			"introversion_extraversion": {0.6},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "introversion_extraversion", profile.Dominant[models.DomainPersonality])
}

func TestAggregate_RejectsBadInput(t *testing.T) {
	_, err := Aggregate(models.AssessmentData{
		AptitudeScores:     models.SampleSet{"logical_reasoning": {1.4}, "charm": {0.5}},
		RIASECScores:       models.SampleSet{"social": {}},
		SubjectPerformance: models.SampleSet{"mathematics": {101}},
	})
	require.Error(t, err)

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)

	codes := map[string]string{}
	for _, v := range stdErr.Violations {
		codes[v.Field] = v.Code
	}
	assert.Equal(t, map[string]string{
		"assessment_data.aptitude_scores.logical_reasoning": CodeOutOfRange,
		"assessment_data.aptitude_scores.charm":             CodeUnknownDimension,
		"assessment_data.riasec_scores.social":              CodeNoSamples,
		"assessment_data.subject_performance.mathematics":   CodeOutOfRange,
	}, codes)
}
