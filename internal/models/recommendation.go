// internal/models/recommendation.go
package models

type DemandTrend string

const (
	DemandVeryHigh DemandTrend = "very_high"
	DemandHigh     DemandTrend = "high"
	DemandMedium   DemandTrend = "medium"
	DemandLow      DemandTrend = "low"
)

type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierBackup    Tier = "backup"
)

// SignalValue is one learner dimension that backed a recommendation.
type SignalValue struct {
	Domain Domain  `json:"domain"`
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
}

// RecommendationCandidate is one ranked stream or course.
type RecommendationCandidate struct {
	Name                string        `json:"stream_or_course"`
	Kind                string        `json:"kind"`
	Stream              string        `json:"stream"`
	Tier                Tier          `json:"tier"`
	Confidence          float64       `json:"confidence_score"`
	Reasoning           string        `json:"reasoning"`
	CareerOpportunities []string      `json:"career_opportunities"`
	TimeToEarn          string        `json:"time_to_earn"`
	AverageSalary       string        `json:"average_salary"`
	JobDemandTrend      DemandTrend   `json:"job_demand_trend"`
	Signals             []SignalValue `json:"signals,omitempty"`
}

// RecommendationSet is the tiered output of the rule engine.
type RecommendationSet struct {
	ClassLevel               ClassLevel                `json:"class_level"`
	Primary                  []RecommendationCandidate `json:"primary_recommendations"`
	Secondary                []RecommendationCandidate `json:"secondary_recommendations"`
	Backup                   []RecommendationCandidate `json:"backup_recommendations"`
	OverallReasoning         string                    `json:"overall_reasoning"`
	RecommendationConfidence float64                   `json:"recommendation_confidence"`
	InsufficientData         bool                      `json:"insufficient_data"`
	RulesVersion             string                    `json:"rules_version"`
}

// Top returns the highest ranked candidate.
func (s RecommendationSet) Top() (RecommendationCandidate, bool) {
	if len(s.Primary) == 0 {
		return RecommendationCandidate{}, false
	}
	return s.Primary[0], true
}

// All returns every candidate in rank order.
func (s RecommendationSet) All() []RecommendationCandidate {
	all := make([]RecommendationCandidate, 0, len(s.Primary)+len(s.Secondary)+len(s.Backup))
	all = append(all, s.Primary...)
	all = append(all, s.Secondary...)
	return append(all, s.Backup...)
}

type Insights struct {
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	OverallAssessment   string   `json:"overall_assessment"`
}

// AssessmentResult is what a successful submission returns.
// RecommendedPath lists every candidate in rank order; Tiers keeps the same
// candidates grouped with the set-level reasoning and confidence.
type AssessmentResult struct {
	SessionID       string                    `json:"session_id"`
	StudentClass    ClassLevel                `json:"student_class"`
	RecommendedPath []RecommendationCandidate `json:"recommended_path"`
	Tiers           RecommendationSet         `json:"tiers"`
	CareerPathways  []CareerPathway           `json:"career_pathways,omitempty"`
	TestPerformance PerformanceMetrics        `json:"test_performance"`
	AIInsights      Insights                  `json:"ai_insights"`
}
