// Package catalog serves career pathways and colleges. Pathways come from
// Elasticsearch when it is configured, otherwise from the embedded catalog.
package catalog

import (
	"strings"

	"assessment-engine/internal/models"
)

type (
	SalaryRange   = models.SalaryRange
	CareerPathway = models.CareerPathway
)

type Location struct {
	State string `json:"state"`
	City  string `json:"city"`
}

type Fees struct {
	Annual   int    `json:"annual"`
	Currency string `json:"currency"`
}

type College struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Location   Location           `json:"location"`
	Programs   []string           `json:"programs"`
	CutOffData map[string]float64 `json:"cut_off_data"`
	Fees       Fees               `json:"fees"`
	Facilities []string           `json:"facilities"`
}

// TopCollegeCount is how many colleges are returned when none match the
// requested location.
const TopCollegeCount = 3

var careerPathways = []CareerPathway{
	{
		ID:                    "1",
		Title:                 "Software Engineer",
		Stream:                "engineering",
		EducationRequirements: []string{"B.Tech Computer Science", "M.Tech (Optional)"},
		SkillsRequired:        []string{"Programming", "Problem Solving", "Mathematics"},
		JobOpportunities:      []string{"Software Developer", "System Analyst", "Tech Lead"},
		SalaryRange:           SalaryRange{Min: 400000, Max: 2000000, Currency: "INR"},
		GrowthProspects:       "High demand in IT sector with excellent growth opportunities",
		RelatedExams:          []string{"GATE", "JEE Advanced", "Company-specific tests"},
	},
	{
		ID:                    "2",
		Title:                 "Doctor",
		Stream:                "medical",
		EducationRequirements: []string{"MBBS", "MD/MS (Specialization)"},
		SkillsRequired:        []string{"Medical Knowledge", "Empathy", "Problem Solving"},
		JobOpportunities:      []string{"General Practitioner", "Specialist", "Surgeon"},
		SalaryRange:           SalaryRange{Min: 600000, Max: 3000000, Currency: "INR"},
		GrowthProspects:       "Stable career with high social respect and good earning potential",
		RelatedExams:          []string{"NEET", "AIIMS", "JIPMER"},
	},
	{
		ID:                    "3",
		Title:                 "Data Scientist",
		Stream:                "science",
		EducationRequirements: []string{"B.Sc Mathematics/Statistics", "M.Sc/M.Tech Data Science"},
		SkillsRequired:        []string{"Statistics", "Programming", "Machine Learning"},
		JobOpportunities:      []string{"Data Analyst", "ML Engineer", "Research Scientist"},
		SalaryRange:           SalaryRange{Min: 500000, Max: 2500000, Currency: "INR"},
		GrowthProspects:       "High demand in AI/ML field with excellent career prospects",
		RelatedExams:          []string{"GATE", "GRE", "Company-specific tests"},
	},
	{
		ID:                    "4",
		Title:                 "Civil Engineer",
		Stream:                "engineering",
		EducationRequirements: []string{"B.Tech Civil Engineering", "M.Tech (Optional)"},
		SkillsRequired:        []string{"Mathematics", "Physics", "Design Skills"},
		JobOpportunities:      []string{"Site Engineer", "Project Manager", "Consultant"},
		SalaryRange:           SalaryRange{Min: 300000, Max: 1500000, Currency: "INR"},
		GrowthProspects:       "Good opportunities in infrastructure development",
		RelatedExams:          []string{"GATE", "JEE Advanced", "State Engineering Exams"},
	},
	{
		ID:                    "5",
		Title:                 "Teacher/Professor",
		Stream:                "arts",
		EducationRequirements: []string{"B.Ed", "M.A/M.Sc", "Ph.D (For Professor)"},
		SkillsRequired:        []string{"Subject Knowledge", "Communication", "Patience"},
		JobOpportunities:      []string{"School Teacher", "College Professor", "Educational Consultant"},
		SalaryRange:           SalaryRange{Min: 200000, Max: 1200000, Currency: "INR"},
		GrowthProspects:       "Stable career with good work-life balance",
		RelatedExams:          []string{"CTET", "NET", "State Teacher Exams"},
	},
}

var colleges = []College{
	{
		ID:         "1",
		Name:       "Delhi University",
		Type:       "government",
		Location:   Location{State: "Delhi", City: "New Delhi"},
		Programs:   []string{"Arts", "Science", "Commerce"},
		CutOffData: map[string]float64{"arts": 85, "science": 90, "commerce": 88},
		Fees:       Fees{Annual: 15000, Currency: "INR"},
		Facilities: []string{"Hostel", "Library", "Sports", "Labs"},
	},
	{
		ID:         "2",
		Name:       "IIT Delhi",
		Type:       "government",
		Location:   Location{State: "Delhi", City: "New Delhi"},
		Programs:   []string{"Engineering", "Technology"},
		CutOffData: map[string]float64{"engineering": 95},
		Fees:       Fees{Annual: 200000, Currency: "INR"},
		Facilities: []string{"Hostel", "Library", "Sports", "Labs", "Research Centers"},
	},
}

// EmbeddedPathways returns the built-in pathways, filtered by stream when
// one is given. The result is a copy.
func EmbeddedPathways(stream string) []CareerPathway {
	stream = strings.ToLower(strings.TrimSpace(stream))
	out := []CareerPathway{}
	for _, p := range careerPathways {
		if stream == "" || p.Stream == stream {
			out = append(out, p)
		}
	}
	return out
}

// Colleges returns colleges in the given state or city (case-insensitive).
// When nothing matches, or no location is given, the first TopCollegeCount
// colleges are returned.
func Colleges(state, city string) []College {
	state = strings.TrimSpace(state)
	city = strings.TrimSpace(city)

	out := []College{}
	if state != "" || city != "" {
		for _, c := range colleges {
			if (state != "" && strings.EqualFold(c.Location.State, state)) ||
				(city != "" && strings.EqualFold(c.Location.City, city)) {
				out = append(out, c)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	n := TopCollegeCount
	if n > len(colleges) {
		n = len(colleges)
	}
	return append(out, colleges[:n]...)
}
