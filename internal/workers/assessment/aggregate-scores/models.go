// internal/workers/assessment/aggregate-scores/models.go
package aggregatescores

import "assessment-engine/internal/models"

type Input struct {
	UserID         string                `json:"userId"`
	AssessmentData models.AssessmentData `json:"assessmentData"`
}

type Output struct {
	LearnerProfile   *models.LearnerProfile `json:"learnerProfile"`
	DominantAptitude string                 `json:"dominantAptitude,omitempty"`
	DominantInterest string                 `json:"dominantInterest,omitempty"`
	InsufficientData bool                   `json:"insufficientData"`
}
