// internal/workers/assessment/record-assessment-session/models.go
package recordassessmentsession

import (
	"time"

	"assessment-engine/internal/models"
)

type Input struct {
	UserID             string                     `json:"userId"`
	AttemptID          string                     `json:"attemptId"`
	StudentClass       models.ClassLevel          `json:"studentClass"`
	PerformanceMetrics *models.PerformanceMetrics `json:"performanceMetrics"`
	LearnerProfile     *models.LearnerProfile     `json:"learnerProfile"`
	Recommendations    *models.RecommendationSet  `json:"recommendations"`
	AIInsights         models.Insights            `json:"aiInsights"`
}

type Output struct {
	SessionID        string    `json:"sessionId"`
	RecommendationID string    `json:"recommendationId"`
	RecordedAt       time.Time `json:"recordedAt"`
}
