// internal/models/scores.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Domain identifies one family of psychometric scores.
type Domain string

const (
	DomainAptitude    Domain = "aptitude"
	DomainRIASEC      Domain = "riasec"
	DomainPersonality Domain = "personality"
	DomainSubject     Domain = "subject"
)

// Domains lists every domain in reporting order.
var Domains = []Domain{DomainAptitude, DomainRIASEC, DomainPersonality, DomainSubject}

// DomainSpec declares the dimensions of a domain and the scale its values
// live on. SampleMax bounds raw client samples, which are multiplied by
// SampleScale after averaging to land on [0, Max].
type DomainSpec struct {
	Domain      Domain
	Keys        []string
	Max         float64
	SampleMax   float64
	SampleScale float64
	Labels      map[string]string
}

var domainSpecs = map[Domain]DomainSpec{
	DomainAptitude: {
		Domain:      DomainAptitude,
		Keys:        []string{"logical_reasoning", "quantitative_skills", "language_verbal_skills", "spatial_visual_skills", "memory_attention"},
		Max:         100,
		SampleMax:   1,
		SampleScale: 100,
		Labels: map[string]string{
			"language_verbal_skills": "language and verbal skills",
			"spatial_visual_skills":  "spatial and visual skills",
			"memory_attention":       "memory and attention",
		},
	},
	DomainRIASEC: {
		Domain:      DomainRIASEC,
		Keys:        []string{"realistic", "investigative", "artistic", "social", "enterprising", "conventional"},
		Max:         1,
		SampleMax:   1,
		SampleScale: 1,
		Labels: map[string]string{
			"realistic":     "realistic (hands-on) interest",
			"investigative": "investigative interest",
			"artistic":      "artistic interest",
			"social":        "social interest",
			"enterprising":  "enterprising interest",
			"conventional":  "conventional (organising) interest",
		},
	},
	DomainPersonality: {
		Domain:      DomainPersonality,
		Keys:        []string{"introversion_extraversion", "sensing_intuition", "thinking_feeling", "judging_perceiving"},
		Max:         1,
		SampleMax:   1,
		SampleScale: 1,
		Labels: map[string]string{
			"introversion_extraversion": "extraversion",
			"sensing_intuition":         "intuition",
			"thinking_feeling":          "feeling orientation",
			"judging_perceiving":        "perceiving orientation",
		},
	},
	DomainSubject: {
		Domain:      DomainSubject,
		Keys:        []string{"mathematics", "physics", "chemistry", "biology", "english", "social_studies", "economics", "computer_science"},
		Max:         100,
		SampleMax:   100,
		SampleScale: 1,
		Labels: map[string]string{
			"social_studies":   "social studies",
			"computer_science": "computer science",
		},
	},
}

// SpecFor returns the declaration for d.
func SpecFor(d Domain) (DomainSpec, bool) {
	spec, ok := domainSpecs[d]
	return spec, ok
}

func (s DomainSpec) Has(key string) bool {
	return s.index(key) >= 0
}

func (s DomainSpec) index(key string) int {
	for i, k := range s.Keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Label is the human readable name of a dimension.
func (s DomainSpec) Label(key string) string {
	if l, ok := s.Labels[key]; ok {
		return l
	}
	return strings.ReplaceAll(key, "_", " ")
}

// ScoreVector holds the present dimensions of one domain. A dimension that
// was never reported is absent, not zero.
type ScoreVector struct {
	domain Domain
	values map[string]float64
}

func NewScoreVector(d Domain) ScoreVector {
	return ScoreVector{domain: d, values: map[string]float64{}}
}

func (v ScoreVector) Domain() Domain {
	return v.domain
}

// Set stores value for key after checking the key is declared for the
// domain and the value is on the domain scale.
func (v *ScoreVector) Set(key string, value float64) error {
	spec, ok := SpecFor(v.domain)
	if !ok {
		return fmt.Errorf("unknown domain %q", v.domain)
	}
	if !spec.Has(key) {
		return fmt.Errorf("unknown %s dimension %q", v.domain, key)
	}
	if value < 0 || value > spec.Max {
		return fmt.Errorf("%s.%s must be within [0, %g], got %g", v.domain, key, spec.Max, value)
	}
	if v.values == nil {
		v.values = map[string]float64{}
	}
	v.values[key] = value
	return nil
}

// Get returns the value of key and whether it is present.
func (v ScoreVector) Get(key string) (float64, bool) {
	val, ok := v.values[key]
	return val, ok
}

// Normalized returns the value of key rescaled to [0, 1].
func (v ScoreVector) Normalized(key string) (float64, bool) {
	val, ok := v.values[key]
	if !ok {
		return 0, false
	}
	spec, _ := SpecFor(v.domain)
	return val / spec.Max, true
}

func (v ScoreVector) Len() int {
	return len(v.values)
}

// Keys returns the present dimensions in declared order.
func (v ScoreVector) Keys() []string {
	spec, _ := SpecFor(v.domain)
	keys := make([]string, 0, len(v.values))
	for _, k := range spec.Keys {
		if _, ok := v.values[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Dominant returns the highest present dimension. Ties go to the dimension
// declared first.
func (v ScoreVector) Dominant() (string, bool) {
	best, bestVal, found := "", 0.0, false
	for _, k := range v.Keys() {
		if val := v.values[k]; !found || val > bestVal {
			best, bestVal, found = k, val, true
		}
	}
	return best, found
}

func (v ScoreVector) allZero() bool {
	for _, val := range v.values {
		if val != 0 {
			return false
		}
	}
	return true
}

func (v ScoreVector) MarshalJSON() ([]byte, error) {
	if v.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v.values)
}

// LearnerProfile is the aggregated score set for one learner.
type LearnerProfile struct {
	Aptitude    ScoreVector       `json:"aptitude"`
	RIASEC      ScoreVector       `json:"riasec"`
	Personality ScoreVector       `json:"personality"`
	Subject     ScoreVector       `json:"subject"`
	Dominant    map[Domain]string `json:"dominant,omitempty"`
}

func NewLearnerProfile() *LearnerProfile {
	return &LearnerProfile{
		Aptitude:    NewScoreVector(DomainAptitude),
		RIASEC:      NewScoreVector(DomainRIASEC),
		Personality: NewScoreVector(DomainPersonality),
		Subject:     NewScoreVector(DomainSubject),
		Dominant:    map[Domain]string{},
	}
}

// Vector returns the vector for d, or nil for an unknown domain.
func (p *LearnerProfile) Vector(d Domain) *ScoreVector {
	switch d {
	case DomainAptitude:
		return &p.Aptitude
	case DomainRIASEC:
		return &p.RIASEC
	case DomainPersonality:
		return &p.Personality
	case DomainSubject:
		return &p.Subject
	default:
		return nil
	}
}

// Signal returns the normalised [0, 1] value of one dimension.
func (p *LearnerProfile) Signal(d Domain, key string) (float64, bool) {
	v := p.Vector(d)
	if v == nil {
		return 0, false
	}
	return v.Normalized(key)
}

// IsEmpty reports a profile with nothing usable: no values at all, or only zeros.
func (p *LearnerProfile) IsEmpty() bool {
	for _, d := range Domains {
		v := p.Vector(d)
		if v.Len() > 0 && !v.allZero() {
			return false
		}
	}
	return true
}

func (p *LearnerProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		Aptitude    map[string]float64 `json:"aptitude"`
		RIASEC      map[string]float64 `json:"riasec"`
		Personality map[string]float64 `json:"personality"`
		Subject     map[string]float64 `json:"subject"`
		Dominant    map[Domain]string  `json:"dominant"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	profile := NewLearnerProfile()
	for d, values := range map[Domain]map[string]float64{
		DomainAptitude:    raw.Aptitude,
		DomainRIASEC:      raw.RIASEC,
		DomainPersonality: raw.Personality,
		DomainSubject:     raw.Subject,
	} {
		vec := profile.Vector(d)
		for k, val := range values {
			if err := vec.Set(k, val); err != nil {
				return err
			}
		}
	}
	if raw.Dominant != nil {
		profile.Dominant = raw.Dominant
	}
	*p = *profile
	return nil
}

// Samples holds the raw item values reported for one dimension. It decodes
// from either a single number or an array of numbers.
type Samples []float64

func (s *Samples) UnmarshalJSON(data []byte) error {
	var one float64
	if err := json.Unmarshal(data, &one); err == nil {
		*s = Samples{one}
		return nil
	}
	var many []float64
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("score must be a number or an array of numbers")
	}
	*s = many
	return nil
}

type SampleSet map[string]Samples

// PracticalConstraints are the non-psychometric factors that can pull a
// candidate's confidence down.
type PracticalConstraints struct {
	FinancialBackground string `json:"financial_background,omitempty"`
	ParentalExpectation string `json:"parental_expectation,omitempty"`
	MaxStudyYears       *int   `json:"max_study_years,omitempty"`
	PreferredLocation   string `json:"preferred_location,omitempty"`
}

// WithDefaults fills every unset field from fallback.
func (c PracticalConstraints) WithDefaults(fallback PracticalConstraints) PracticalConstraints {
	if c.FinancialBackground == "" {
		c.FinancialBackground = fallback.FinancialBackground
	}
	if c.ParentalExpectation == "" {
		c.ParentalExpectation = fallback.ParentalExpectation
	}
	if c.MaxStudyYears == nil {
		c.MaxStudyYears = fallback.MaxStudyYears
	}
	if c.PreferredLocation == "" {
		c.PreferredLocation = fallback.PreferredLocation
	}
	return c
}

// AssessmentData is the psychometric part of a submission.
type AssessmentData struct {
	AptitudeScores       SampleSet             `json:"aptitude_scores,omitempty"`
	RIASECScores         SampleSet             `json:"riasec_scores,omitempty"`
	PersonalityScores    SampleSet             `json:"personality_scores,omitempty"`
	SubjectPerformance   SampleSet             `json:"subject_performance,omitempty"`
	PracticalConstraints *PracticalConstraints `json:"practical_constraints,omitempty"`
}

// Samples returns the raw samples submitted for d.
func (a AssessmentData) Samples(d Domain) SampleSet {
	switch d {
	case DomainAptitude:
		return a.AptitudeScores
	case DomainRIASEC:
		return a.RIASECScores
	case DomainPersonality:
		return a.PersonalityScores
	case DomainSubject:
		return a.SubjectPerformance
	default:
		return nil
	}
}
