package registry

// RuleSet is the versioned recommendation table. It is loaded once at start
// up and treated as read-only afterwards.
type RuleSet struct {
	Version                string                `json:"version"`
	LastUpdated            string                `json:"lastUpdated"`
	PrimaryCount           int                   `json:"primaryCount"`
	Priority               []string              `json:"priority"`
	Categories             []string              `json:"categories"`
	Weights                Weights               `json:"weights"`
	LowConfidenceThreshold float64               `json:"lowConfidenceThreshold"`
	FallbackReasoning      string                `json:"fallbackReasoning"`
	ClassLevels            map[string]ClassRules `json:"classLevels"`
}

type Weights struct {
	Signal                 float64 `json:"signal"`
	DominantBonus          float64 `json:"dominantBonus"`
	ConstraintPenalty      float64 `json:"constraintPenalty"`
	InsufficientDataFactor float64 `json:"insufficientDataFactor"`
}

// ClassRules lists what a class level is offered: streams after 10th,
// courses after 12th.
type ClassRules struct {
	Kind       string      `json:"kind"`
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Name                string   `json:"name"`
	Stream              string   `json:"stream"`
	BaseConfidence      float64  `json:"baseConfidence"`
	Signals             []Signal `json:"signals"`
	ReasoningTemplate   string   `json:"reasoningTemplate"`
	CareerOpportunities []string `json:"careerOpportunities"`
	TimeToEarn          string   `json:"timeToEarn"`
	AverageSalary       string   `json:"averageSalary"`
	JobDemandTrend      string   `json:"jobDemandTrend"`
	CostLevel           string   `json:"costLevel"`
	DurationYears       int      `json:"durationYears"`
}

// Signal names one learner dimension that supports a candidate.
type Signal struct {
	Domain string  `json:"domain"`
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

const (
	CostLow    = "low"
	CostMedium = "medium"
	CostHigh   = "high"
)
