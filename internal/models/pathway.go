// internal/models/pathway.go
package models

type SalaryRange struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// CareerPathway is one career reachable from a stream. MatchScore is the
// share of SkillsRequired that the learner's interests mention, set when
// pathways are ranked for a learner.
type CareerPathway struct {
	ID                    string      `json:"id"`
	Title                 string      `json:"title"`
	Stream                string      `json:"stream"`
	EducationRequirements []string    `json:"education_requirements"`
	SkillsRequired        []string    `json:"skills_required"`
	JobOpportunities      []string    `json:"job_opportunities"`
	SalaryRange           SalaryRange `json:"salary_range"`
	GrowthProspects       string      `json:"growth_prospects"`
	RelatedExams          []string    `json:"related_exams"`
	MatchScore            float64     `json:"match_score"`
}
