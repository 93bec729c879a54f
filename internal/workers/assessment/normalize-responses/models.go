// internal/workers/assessment/normalize-responses/models.go
package normalizeresponses

import "assessment-engine/internal/models"

type Input struct {
	UserID          string                 `json:"userId"`
	TestPerformance models.TestPerformance `json:"testPerformance"`
}

type Output struct {
	Responses     []models.Response `json:"responses"`
	ResponseCount int               `json:"responseCount"`
}
