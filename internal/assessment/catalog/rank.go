// internal/assessment/catalog/rank.go
package catalog

import (
	"sort"
	"strings"
)

// MaxRankedPathways is how many pathways Rank returns.
const MaxRankedPathways = 3

// Rank scores every pathway by the share of its required skills that at
// least one interest names (case-insensitive substring) and returns the
// best MaxRankedPathways, highest first. Equal scores keep catalog order.
// The input slice is not modified.
func Rank(pathways []CareerPathway, interests []string) []CareerPathway {
	wanted := make([]string, 0, len(interests))
	for _, in := range interests {
		if in = strings.ToLower(strings.TrimSpace(in)); in != "" {
			wanted = append(wanted, in)
		}
	}

	ranked := make([]CareerPathway, len(pathways))
	copy(ranked, pathways)
	for i := range ranked {
		ranked[i].MatchScore = matchScore(ranked[i].SkillsRequired, wanted)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].MatchScore > ranked[j].MatchScore })

	if len(ranked) > MaxRankedPathways {
		ranked = ranked[:MaxRankedPathways]
	}
	return ranked
}

func matchScore(skills, interests []string) float64 {
	if len(skills) == 0 {
		return 0
	}
	matched := 0
	for _, skill := range skills {
		skill = strings.ToLower(skill)
		for _, in := range interests {
			if strings.Contains(skill, in) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(skills))
}
