package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
)

//go:embed default_rules.json
var defaultRules []byte

// Load reads and validates a rule table from disk.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return Parse(data)
}

// LoadDefault returns the rule table compiled into the binary.
func LoadDefault() (*RuleSet, error) {
	return Parse(defaultRules)
}

// LoadOrDefault loads path, or the embedded table when path is empty.
func LoadOrDefault(path string) (*RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return LoadDefault()
	}
	return Load(path)
}

func Parse(data []byte) (*RuleSet, error) {
	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, apperrors.NewRulesInvalidError(fmt.Sprintf("decode: %v", err))
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Validate checks the whole table and reports every problem found.
func (r *RuleSet) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if r.Version == "" {
		add("version is required")
	}
	if r.PrimaryCount < 1 {
		add("primaryCount must be at least 1")
	}
	if len(r.Categories) == 0 {
		add("categories must not be empty")
	}

	seen := map[string]bool{}
	for _, p := range r.Priority {
		if seen[p] {
			add("priority lists %q twice", p)
		}
		seen[p] = true
	}

	w := r.Weights
	if w.Signal < 0 || w.Signal > 1 {
		add("weights.signal must be within [0, 1]")
	}
	if w.DominantBonus < 0 || w.DominantBonus > 0.5 {
		add("weights.dominantBonus must be within [0, 0.5]")
	}
	if w.ConstraintPenalty < 0 || w.ConstraintPenalty > 1 {
		add("weights.constraintPenalty must be within [0, 1]")
	}
	if w.InsufficientDataFactor <= 0 || w.InsufficientDataFactor > 1 {
		add("weights.insufficientDataFactor must be within (0, 1]")
	}
	if r.LowConfidenceThreshold <= 0 || r.LowConfidenceThreshold > 1 {
		add("lowConfidenceThreshold must be within (0, 1]")
	}
	if r.FallbackReasoning == "" {
		add("fallbackReasoning is required")
	}

	if len(r.ClassLevels) == 0 {
		add("classLevels must not be empty")
	}
	for level, class := range r.ClassLevels {
		if !models.ClassLevel(level).Valid() {
			add("classLevels: unknown class level %q", level)
		}
		if class.Kind != "stream" && class.Kind != "course" {
			add("classLevels.%s.kind must be stream or course", level)
		}
		if len(class.Candidates) == 0 {
			add("classLevels.%s has no candidates", level)
		}
		names := map[string]bool{}
		for i, c := range class.Candidates {
			where := fmt.Sprintf("classLevels.%s.candidates[%d]", level, i)
			if c.Name == "" {
				add("%s.name is required", where)
			} else if names[c.Name] {
				add("%s: duplicate candidate %q", where, c.Name)
			}
			names[c.Name] = true

			if c.Stream == "" {
				add("%s.stream is required", where)
			}
			if c.BaseConfidence < 0 || c.BaseConfidence > 1 {
				add("%s.baseConfidence must be within [0, 1]", where)
			}
			if c.ReasoningTemplate == "" {
				add("%s.reasoningTemplate is required", where)
			}
			if c.CostLevel != "" && c.CostLevel != CostLow && c.CostLevel != CostMedium && c.CostLevel != CostHigh {
				add("%s.costLevel %q is not low, medium or high", where, c.CostLevel)
			}
			if !validTrend(c.JobDemandTrend) {
				add("%s.jobDemandTrend %q is not recognised", where, c.JobDemandTrend)
			}
			for j, s := range c.Signals {
				spec, ok := models.SpecFor(models.Domain(s.Domain))
				if !ok {
					add("%s.signals[%d]: unknown domain %q", where, j, s.Domain)
					continue
				}
				if !spec.Has(s.Key) {
					add("%s.signals[%d]: unknown %s dimension %q", where, j, s.Domain, s.Key)
				}
				if s.Weight <= 0 {
					add("%s.signals[%d].weight must be positive", where, j)
				}
			}
		}
	}

	if len(problems) > 0 {
		return apperrors.NewRulesInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

func validTrend(t string) bool {
	switch models.DemandTrend(t) {
	case models.DemandVeryHigh, models.DemandHigh, models.DemandMedium, models.DemandLow:
		return true
	}
	return false
}

// Class returns the rules for a class level.
func (r *RuleSet) Class(level models.ClassLevel) (ClassRules, bool) {
	c, ok := r.ClassLevels[string(level)]
	return c, ok
}

// PriorityIndex ranks a stream for tie-breaking. Unlisted streams sort last.
func (r *RuleSet) PriorityIndex(stream string) int {
	for i, p := range r.Priority {
		if p == stream {
			return i
		}
	}
	return len(r.Priority)
}

// HasCategory reports whether c is part of the question taxonomy.
func (r *RuleSet) HasCategory(c string) bool {
	for _, known := range r.Categories {
		if known == c {
			return true
		}
	}
	return false
}
