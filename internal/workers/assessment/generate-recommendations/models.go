// internal/workers/assessment/generate-recommendations/models.go
package generaterecommendations

import (
	"assessment-engine/internal/assessment/catalog"
	"assessment-engine/internal/models"
)

type Input struct {
	UserID               string                       `json:"userId"`
	StudentClass         models.ClassLevel            `json:"studentClass"`
	LearnerProfile       *models.LearnerProfile       `json:"learnerProfile"`
	PerformanceMetrics   *models.PerformanceMetrics   `json:"performanceMetrics"`
	PracticalConstraints *models.PracticalConstraints `json:"practicalConstraints"`
	Interests            []string                     `json:"interests,omitempty"`
}

type Output struct {
	Recommendations          *models.RecommendationSet `json:"recommendations"`
	AIInsights               models.Insights           `json:"aiInsights"`
	RecommendationConfidence float64                   `json:"recommendationConfidence"`
	InsufficientData         bool                      `json:"insufficientData"`
	RulesVersion             string                    `json:"rulesVersion"`
	CareerPathways           []catalog.CareerPathway   `json:"careerPathways"`
}
