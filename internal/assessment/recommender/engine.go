// Package recommender ranks streams and courses for a learner profile using
// a versioned rule table.
package recommender

import (
	"fmt"
	"math"
	"sort"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
	"assessment-engine/pkg/registry"
)

const (
	FinancialLow          = "low"
	ExpectEarlyEmployment = "early_employment"

	maxEarlyEmploymentYears = 4
)

// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	rules        *registry.RuleSet
	primaryCount int
}

type Option func(*Engine)

// WithPrimaryCount overrides the rule table's primary tier size. Values
// below 1 are ignored.
func WithPrimaryCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.primaryCount = n
		}
	}
}

func NewEngine(rules *registry.RuleSet, opts ...Option) (*Engine, error) {
	if rules == nil {
		return nil, apperrors.NewRulesInvalidError("rule set is nil")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{rules: rules, primaryCount: rules.PrimaryCount}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) RulesVersion() string {
	return e.rules.Version
}

// Rules exposes the loaded table read-only by convention.
func (e *Engine) Rules() *registry.RuleSet {
	return e.rules
}

type scored struct {
	candidate models.RecommendationCandidate
	priority  int
	order     int
}

// Recommend ranks every candidate offered to class and splits them into
// primary, secondary and backup tiers. A nil or empty profile produces a
// low-confidence default ranking flagged as insufficient data.
func (e *Engine) Recommend(profile *models.LearnerProfile, class models.ClassLevel, constraints models.PracticalConstraints) (*models.RecommendationSet, error) {
	classRules, ok := e.rules.Class(class)
	if !ok {
		return nil, apperrors.NewValidationError("unsupported class level", []apperrors.FieldViolation{{
			Field:   "student_class",
			Code:    "UNSUPPORTED_CLASS",
			Message: fmt.Sprintf("no recommendations are defined for class %q", class),
		}})
	}

	insufficient := profile == nil || profile.IsEmpty()

	ranked := make([]scored, 0, len(classRules.Candidates))
	for i, c := range classRules.Candidates {
		var rc models.RecommendationCandidate
		if insufficient {
			rc = e.fallbackCandidate(c, classRules.Kind)
		} else {
			rc = e.scoreCandidate(c, classRules.Kind, profile, constraints)
		}
		ranked = append(ranked, scored{candidate: rc, priority: e.rules.PriorityIndex(c.Stream), order: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.candidate.Confidence != b.candidate.Confidence {
			return a.candidate.Confidence > b.candidate.Confidence
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.order < b.order
	})

	set := &models.RecommendationSet{
		ClassLevel:       class,
		Primary:          []models.RecommendationCandidate{},
		Secondary:        []models.RecommendationCandidate{},
		Backup:           []models.RecommendationCandidate{},
		InsufficientData: insufficient,
		RulesVersion:     e.rules.Version,
	}
	for i, s := range ranked {
		c := s.candidate
		switch {
		case i < e.primaryCount:
			c.Tier = models.TierPrimary
			set.Primary = append(set.Primary, c)
		case i < 2*e.primaryCount:
			c.Tier = models.TierSecondary
			set.Secondary = append(set.Secondary, c)
		default:
			c.Tier = models.TierBackup
			set.Backup = append(set.Backup, c)
		}
	}

	if top, ok := set.Top(); ok {
		set.RecommendationConfidence = top.Confidence
	}
	set.OverallReasoning = e.overallReasoning(set)
	return set, nil
}

func (e *Engine) fallbackCandidate(c registry.Candidate, kind string) models.RecommendationCandidate {
	rc := baseCandidate(c, kind)
	rc.Confidence = round3(clamp01(c.BaseConfidence * e.rules.Weights.InsufficientDataFactor))
	rc.Reasoning = fillTemplate(e.rules.FallbackReasoning, c.Name, nil)
	return rc
}

func (e *Engine) scoreCandidate(c registry.Candidate, kind string, profile *models.LearnerProfile, constraints models.PracticalConstraints) models.RecommendationCandidate {
	w := e.rules.Weights
	present := presentSignals(c, profile)

	confidence := c.BaseConfidence
	if strength, ok := signalStrength(c, profile); ok {
		confidence += w.Signal * (strength - 0.5)
	}
	confidence += w.DominantBonus * float64(dominantMatches(c, profile))
	confidence -= w.ConstraintPenalty * float64(constraintConflicts(c, constraints))

	rc := baseCandidate(c, kind)
	rc.Confidence = round3(clamp01(confidence))
	if len(present) > 2 {
		present = present[:2]
	}
	rc.Signals = present
	if len(present) == 0 {
		rc.Reasoning = fillTemplate(e.rules.FallbackReasoning, c.Name, nil)
	} else {
		rc.Reasoning = fillTemplate(c.ReasoningTemplate, c.Name, present)
	}
	return rc
}

func baseCandidate(c registry.Candidate, kind string) models.RecommendationCandidate {
	return models.RecommendationCandidate{
		Name:                c.Name,
		Kind:                kind,
		Stream:              c.Stream,
		CareerOpportunities: append([]string(nil), c.CareerOpportunities...),
		TimeToEarn:          c.TimeToEarn,
		AverageSalary:       c.AverageSalary,
		JobDemandTrend:      models.DemandTrend(c.JobDemandTrend),
	}
}

// signalStrength is the weighted mean of the candidate's present signals on
// a 0-1 scale. It is non-decreasing in every signal value.
func signalStrength(c registry.Candidate, profile *models.LearnerProfile) (float64, bool) {
	var sum, weights float64
	for _, s := range c.Signals {
		v, ok := profile.Signal(models.Domain(s.Domain), s.Key)
		if !ok {
			continue
		}
		sum += v * s.Weight
		weights += s.Weight
	}
	if weights == 0 {
		return 0, false
	}
	return sum / weights, true
}

// dominantMatches counts domains whose strongest non-zero dimension is one
// of the candidate's signals.
func dominantMatches(c registry.Candidate, profile *models.LearnerProfile) int {
	matches := 0
	for _, d := range models.Domains {
		vec := profile.Vector(d)
		key, ok := vec.Dominant()
		if !ok {
			continue
		}
		if v, _ := vec.Get(key); v <= 0 {
			continue
		}
		for _, s := range c.Signals {
			if models.Domain(s.Domain) == d && s.Key == key {
				matches++
				break
			}
		}
	}
	return matches
}

func constraintConflicts(c registry.Candidate, pc models.PracticalConstraints) int {
	conflicts := 0
	if pc.FinancialBackground == FinancialLow && c.CostLevel == registry.CostHigh {
		conflicts++
	}
	if pc.ParentalExpectation == ExpectEarlyEmployment && c.DurationYears > maxEarlyEmploymentYears {
		conflicts++
	}
	if pc.MaxStudyYears != nil && c.DurationYears > *pc.MaxStudyYears {
		conflicts++
	}
	return conflicts
}

// presentSignals returns the candidate's signals the learner has values for,
// strongest first. Ties keep rule table order.
func presentSignals(c registry.Candidate, profile *models.LearnerProfile) []models.SignalValue {
	type ranked struct {
		value models.SignalValue
		norm  float64
	}
	var out []ranked
	for _, s := range c.Signals {
		d := models.Domain(s.Domain)
		norm, ok := profile.Signal(d, s.Key)
		if !ok {
			continue
		}
		raw, _ := profile.Vector(d).Get(s.Key)
		spec, _ := models.SpecFor(d)
		out = append(out, ranked{
			value: models.SignalValue{Domain: d, Key: s.Key, Label: spec.Label(s.Key), Value: raw},
			norm:  norm,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].norm > out[j].norm })

	values := make([]models.SignalValue, len(out))
	for i, r := range out {
		values[i] = r.value
	}
	return values
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
