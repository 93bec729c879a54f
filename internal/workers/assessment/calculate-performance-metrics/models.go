// internal/workers/assessment/calculate-performance-metrics/models.go
package calculateperformancemetrics

import "assessment-engine/internal/models"

// Input carries the counters and, when the previous task produced them, the
// normalized responses. Without responses the counters are used.
type Input struct {
	UserID          string                 `json:"userId"`
	TestPerformance models.TestPerformance `json:"testPerformance"`
	Responses       []models.Response      `json:"responses"`
}

type Output struct {
	PerformanceMetrics *models.PerformanceMetrics `json:"performanceMetrics"`
	WeightedScore      float64                    `json:"weightedScore"`
	HasWarnings        bool                       `json:"hasWarnings"`
}
