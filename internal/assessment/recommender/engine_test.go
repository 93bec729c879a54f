package recommender

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
	"assessment-engine/pkg/registry"
)

func defaultEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	rules, err := registry.LoadDefault()
	require.NoError(t, err)
	engine, err := NewEngine(rules, opts...)
	require.NoError(t, err)
	return engine
}

func createTestProfile(t *testing.T, values map[models.Domain]map[string]float64) *models.LearnerProfile {
	t.Helper()
	p := models.NewLearnerProfile()
	for d, dims := range values {
		for k, v := range dims {
			require.NoError(t, p.Vector(d).Set(k, v))
		}
	}
	return p
}

func scienceProfile(t *testing.T) *models.LearnerProfile {
	return createTestProfile(t, map[models.Domain]map[string]float64{
		models.DomainAptitude: {"logical_reasoning": 95, "quantitative_skills": 90},
		models.DomainRIASEC:   {"investigative": 0.9, "artistic": 0.2},
		models.DomainSubject:  {"mathematics": 95, "physics": 88},
	})
}

func names(cs []models.RecommendationCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func mean(cs []models.RecommendationCandidate) float64 {
	sum := 0.0
	for _, c := range cs {
		sum += c.Confidence
	}
	return sum / float64(len(cs))
}

func TestRecommend_TenthClassGetsStreams(t *testing.T) {
	engine := defaultEngine(t)

	set, err := engine.Recommend(scienceProfile(t), models.Class10th, models.PracticalConstraints{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Science", "Commerce", "Arts"}, names(set.Primary))
	assert.Empty(t, set.Secondary)
	assert.Empty(t, set.Backup)
	assert.False(t, set.InsufficientData)
	assert.Equal(t, engine.RulesVersion(), set.RulesVersion)

	top := set.Primary[0]
	assert.Equal(t, "stream", top.Kind)
	assert.Equal(t, models.TierPrimary, top.Tier)
	assert.Equal(t, top.Confidence, set.RecommendationConfidence)
	assert.Greater(t, top.Confidence, 0.9)
	assert.LessOrEqual(t, top.Confidence, 1.0)
	assert.NotEmpty(t, top.CareerOpportunities)
	assert.Equal(t, models.DemandHigh, top.JobDemandTrend)
}

func TestRecommend_TwelfthClassGetsCourses(t *testing.T) {
	engine := defaultEngine(t)

	set, err := engine.Recommend(scienceProfile(t), models.Class12th, models.PracticalConstraints{})
	require.NoError(t, err)

	assert.Len(t, set.Primary, 3)
	assert.Len(t, set.Secondary, 3)
	assert.Len(t, set.Backup, 4)
	for _, c := range set.All() {
		assert.Equal(t, "course", c.Kind)
	}
	assert.Equal(t, "B.Tech Computer Science", set.Primary[0].Name)

	all := set.All()
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Confidence, all[i].Confidence, "ranking must be non-increasing")
	}
}

func TestRecommend_ConfidenceBounded(t *testing.T) {
	engine := defaultEngine(t)
	maxed := createTestProfile(t, map[models.Domain]map[string]float64{
		models.DomainAptitude: {"logical_reasoning": 100, "quantitative_skills": 100},
		models.DomainRIASEC:   {"investigative": 1},
		models.DomainSubject:  {"mathematics": 100, "physics": 100, "biology": 100},
	})
	weak := createTestProfile(t, map[models.Domain]map[string]float64{
		models.DomainRIASEC: {"social": 0.01},
	})

	for _, p := range []*models.LearnerProfile{maxed, weak} {
		for _, class := range []models.ClassLevel{models.Class10th, models.Class12th} {
			set, err := engine.Recommend(p, class, models.PracticalConstraints{FinancialBackground: "low", ParentalExpectation: "early_employment"})
			require.NoError(t, err)
			for _, c := range set.All() {
				assert.GreaterOrEqual(t, c.Confidence, 0.0)
				assert.LessOrEqual(t, c.Confidence, 1.0)
			}
		}
	}
}

func TestRecommend_MonotonicInSignal(t *testing.T) {
	engine := defaultEngine(t)

	confidenceOf := func(set *models.RecommendationSet, name string) float64 {
		for _, c := range set.All() {
			if c.Name == name {
				return c.Confidence
			}
		}
		t.Fatalf("candidate %s missing", name)
		return 0
	}

	previous := -1.0
	for _, v := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1} {
		p := createTestProfile(t, map[models.Domain]map[string]float64{
			models.DomainAptitude: {"logical_reasoning": 60, "quantitative_skills": 70},
			models.DomainRIASEC:   {"investigative": v, "social": 0.5},
		})
		set, err := engine.Recommend(p, models.Class10th, models.PracticalConstraints{})
		require.NoError(t, err)

		got := confidenceOf(set, "Science")
		assert.GreaterOrEqual(t, got, previous, "investigative=%v lowered Science confidence", v)
		previous = got
	}
}

func TestRecommend_ConstraintsLowerConfidence(t *testing.T) {
	engine := defaultEngine(t)
	profile := scienceProfile(t)

	free, err := engine.Recommend(profile, models.Class10th, models.PracticalConstraints{})
	require.NoError(t, err)
	constrained, err := engine.Recommend(profile, models.Class10th, models.PracticalConstraints{
		FinancialBackground: "low",
		ParentalExpectation: "early_employment",
	})
	require.NoError(t, err)

	science := func(set *models.RecommendationSet) float64 {
		for _, c := range set.All() {
			if c.Stream == "science" {
				return c.Confidence
			}
		}
		return 0
	}
	assert.InDelta(t, science(free)-0.2, science(constrained), 1e-9, "two conflicts cost two penalties")

	arts := func(set *models.RecommendationSet) float64 {
		for _, c := range set.All() {
			if c.Stream == "arts" {
				return c.Confidence
			}
		}
		return 0
	}
	assert.Equal(t, arts(free), arts(constrained), "low cost, short streams are unaffected")
}

func TestRecommend_MaxStudyYears(t *testing.T) {
	engine := defaultEngine(t)
	years := 3

	free, err := engine.Recommend(scienceProfile(t), models.Class12th, models.PracticalConstraints{})
	require.NoError(t, err)
	limited, err := engine.Recommend(scienceProfile(t), models.Class12th, models.PracticalConstraints{MaxStudyYears: &years})
	require.NoError(t, err)

	find := func(set *models.RecommendationSet, name string) float64 {
		for _, c := range set.All() {
			if c.Name == name {
				return c.Confidence
			}
		}
		return -1
	}
	assert.Less(t, find(limited, "MBBS"), find(free, "MBBS"))
	assert.Equal(t, find(free, "B.Sc Mathematics"), find(limited, "B.Sc Mathematics"))
}

func TestRecommend_EmptyProfile(t *testing.T) {
	engine := defaultEngine(t)

	for _, p := range []*models.LearnerProfile{nil, models.NewLearnerProfile(), createTestProfile(t, map[models.Domain]map[string]float64{
		models.DomainAptitude: {"logical_reasoning": 0},
	})} {
		set, err := engine.Recommend(p, models.Class10th, models.PracticalConstraints{})
		require.NoError(t, err)

		assert.True(t, set.InsufficientData)
		assert.True(t, strings.HasPrefix(set.OverallReasoning, "Insufficient data"))
		assert.Contains(t, set.OverallReasoning, "explore multiple paths")
		assert.Len(t, set.Primary, 3)

		strong, err := engine.Recommend(scienceProfile(t), models.Class10th, models.PracticalConstraints{})
		require.NoError(t, err)
		assert.Less(t, mean(set.Primary), mean(strong.Primary))
	}
}

func TestRecommend_TiesBrokenByStreamPriority(t *testing.T) {
	engine := defaultEngine(t)

	set, err := engine.Recommend(nil, models.Class12th, models.PracticalConstraints{})
	require.NoError(t, err)

	assert.Equal(t, []string{"B.Tech Computer Science", "MBBS", "B.Com"}, names(set.Primary))
	// B.Sc Mathematics, B.Tech Civil Engineering and BBA all fall back to 0.3.
	assert.Equal(t, []string{"B.Sc Mathematics", "B.Tech Civil Engineering", "BBA"}, names(set.Secondary))
	assert.Equal(t, []string{"B.Sc Biotechnology", "B.A Psychology", "B.Des Design", "Diploma in Electrical Technology"}, names(set.Backup))
}

func TestRecommend_PrimaryCountOverride(t *testing.T) {
	engine := defaultEngine(t, WithPrimaryCount(4))

	set, err := engine.Recommend(scienceProfile(t), models.Class12th, models.PracticalConstraints{})
	require.NoError(t, err)
	assert.Len(t, set.Primary, 4)
	assert.Len(t, set.Secondary, 4)
	assert.Len(t, set.Backup, 2)
}

func TestRecommend_Reasoning(t *testing.T) {
	engine := defaultEngine(t)

	set, err := engine.Recommend(scienceProfile(t), models.Class10th, models.PracticalConstraints{})
	require.NoError(t, err)

	science := set.Primary[0]
	require.Len(t, science.Signals, 2)
	assert.Equal(t, "logical_reasoning", science.Signals[0].Key)
	assert.Contains(t, science.Reasoning, "logical reasoning (95%)")
	assert.Contains(t, science.Reasoning, "Science")
	assert.NotContains(t, science.Reasoning, "{{")

	assert.True(t, strings.HasPrefix(set.OverallReasoning, "Science is your strongest match"))
	assert.NotContains(t, set.OverallReasoning, "explore multiple paths")
}

func TestRecommend_LowConfidenceAddsExploreNote(t *testing.T) {
	engine := defaultEngine(t)
	weak := createTestProfile(t, map[models.Domain]map[string]float64{
		models.DomainAptitude: {"logical_reasoning": 20, "language_verbal_skills": 25},
		models.DomainRIASEC:   {"enterprising": 0.2, "artistic": 0.15},
	})

	set, err := engine.Recommend(weak, models.Class10th, models.PracticalConstraints{})
	require.NoError(t, err)
	assert.Less(t, set.RecommendationConfidence, 0.7)
	assert.False(t, set.InsufficientData)
	assert.Contains(t, set.OverallReasoning, "explore multiple paths")
}

func TestRecommend_UnknownClass(t *testing.T) {
	engine := defaultEngine(t)
	_, err := engine.Recommend(scienceProfile(t), models.ClassLevel("8th"), models.PracticalConstraints{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

func TestNewEngine_RejectsInvalidRules(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)

	_, err = NewEngine(&registry.RuleSet{Version: "broken"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRulesInvalid))
}

func TestFillTemplate(t *testing.T) {
	signals := []models.SignalValue{
		{Domain: models.DomainAptitude, Key: "quantitative_skills", Label: "quantitative skills", Value: 82},
		{Domain: models.DomainRIASEC, Key: "investigative", Label: "investigative interest", Value: 0.75},
	}

	got := fillTemplate("Strong {{top_signal}} ({{top_value}}) and {{second_signal}} ({{second_value}}) fit {{name}}.", "MBBS", signals)
	assert.Equal(t, "Strong quantitative skills (82%) and investigative interest (75%) fit MBBS.", got)

	got = fillTemplate("Strong {{top_signal}} and {{second_signal}} fit {{name}}.", "MBBS", signals[:1])
	assert.Equal(t, "Your quantitative skills (82%) supports MBBS.", got)
}
