// Package aggregator folds raw psychometric item values into one score per
// dimension.
package aggregator

import (
	"fmt"
	"sort"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
)

const (
	CodeUnknownDimension = "UNKNOWN_DIMENSION"
	CodeOutOfRange       = "OUT_OF_RANGE"
	CodeNoSamples        = "NO_SAMPLES"
)

// Aggregate averages every sample reported for the same dimension and
// rescales it onto the domain scale. Dimensions without samples are left
// absent. The dominant dimension of every non-empty domain is recorded.
func Aggregate(data models.AssessmentData) (*models.LearnerProfile, error) {
	profile := models.NewLearnerProfile()
	var violations []apperrors.FieldViolation

	for _, domain := range models.Domains {
		spec, _ := models.SpecFor(domain)
		set := data.Samples(domain)
		vec := profile.Vector(domain)

		for _, key := range sortedKeys(set) {
			field := fmt.Sprintf("assessment_data.%s.%s", fieldName(domain), key)
			samples := set[key]

			if !spec.Has(key) {
				violations = append(violations, apperrors.FieldViolation{
					Field:   field,
					Code:    CodeUnknownDimension,
					Message: fmt.Sprintf("%q is not a %s dimension", key, domain),
				})
				continue
			}
			if len(samples) == 0 {
				violations = append(violations, apperrors.FieldViolation{
					Field:   field,
					Code:    CodeNoSamples,
					Message: "at least one value is required",
				})
				continue
			}

			sum, ok := 0.0, true
			for _, s := range samples {
				if s < 0 || s > spec.SampleMax {
					violations = append(violations, apperrors.FieldViolation{
						Field:   field,
						Code:    CodeOutOfRange,
						Message: fmt.Sprintf("values must be within [0, %g], got %g", spec.SampleMax, s),
					})
					ok = false
					break
				}
				sum += s
			}
			if !ok {
				continue
			}

			mean := sum / float64(len(samples)) * spec.SampleScale
			if err := vec.Set(key, min(mean, spec.Max)); err != nil {
				violations = append(violations, apperrors.FieldViolation{Field: field, Code: CodeOutOfRange, Message: err.Error()})
			}
		}

		if dominant, found := vec.Dominant(); found {
			profile.Dominant[domain] = dominant
		}
	}

	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid assessment scores", violations)
	}
	return profile, nil
}

func fieldName(d models.Domain) string {
	switch d {
	case models.DomainAptitude:
		return "aptitude_scores"
	case models.DomainRIASEC:
		return "riasec_scores"
	case models.DomainPersonality:
		return "personality_scores"
	default:
		return "subject_performance"
	}
}

func sortedKeys(set models.SampleSet) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
