// Package normalizer turns a raw answer stream into validated responses.
package normalizer

import (
	"fmt"
	"math"
	"strings"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/models"
)

const (
	CodeMissingQuestionID   = "MISSING_QUESTION_ID"
	CodeDuplicateQuestionID = "DUPLICATE_QUESTION_ID"
	CodeMissingTime         = "MISSING_TIME"
	CodeNegativeTime        = "NEGATIVE_TIME"
	CodeNonIntegerTime      = "NON_INTEGER_TIME"
	CodeMissingCategory     = "MISSING_CATEGORY"
	CodeUnknownCategory     = "UNKNOWN_CATEGORY"
)

// Taxonomy decides which question categories are accepted.
type Taxonomy interface {
	HasCategory(category string) bool
}

// Categories is a fixed Taxonomy.
type Categories []string

func (c Categories) HasCategory(category string) bool {
	for _, known := range c {
		if known == category {
			return true
		}
	}
	return false
}

// Normalize validates every entry and returns the responses in submission
// order. On failure it returns a VALIDATION_FAILED error listing every
// defective entry, not only the first.
func Normalize(raw []models.RawResponse, taxonomy Taxonomy) ([]models.Response, error) {
	var violations []apperrors.FieldViolation
	reject := func(i int, field, code, format string, args ...interface{}) {
		violations = append(violations, apperrors.FieldViolation{
			Field:   fmt.Sprintf("responses[%d].%s", i, field),
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		})
	}

	seen := make(map[string]int, len(raw))
	out := make([]models.Response, 0, len(raw))

	for i, r := range raw {
		id := strings.TrimSpace(r.QuestionID)
		if id == "" {
			reject(i, "question_id", CodeMissingQuestionID, "question_id is required")
		} else if first, dup := seen[id]; dup {
			reject(i, "question_id", CodeDuplicateQuestionID, "question %q already answered at responses[%d]", id, first)
		} else {
			seen[id] = i
		}

		switch {
		case r.TimeTaken == nil:
			reject(i, "time_taken", CodeMissingTime, "time_taken is required for question %q", id)
		case *r.TimeTaken < 0:
			reject(i, "time_taken", CodeNegativeTime, "time_taken must not be negative for question %q, got %g", id, *r.TimeTaken)
		case *r.TimeTaken != math.Trunc(*r.TimeTaken):
			reject(i, "time_taken", CodeNonIntegerTime, "time_taken must be whole seconds for question %q, got %g", id, *r.TimeTaken)
		}

		category := strings.ToLower(strings.TrimSpace(r.Category))
		switch {
		case category == "":
			reject(i, "category", CodeMissingCategory, "category is required for question %q", id)
		case !taxonomy.HasCategory(category):
			reject(i, "category", CodeUnknownCategory, "category %q of question %q is not part of the taxonomy", category, id)
		}

		if len(violations) > 0 {
			continue
		}
		out = append(out, models.Response{
			QuestionID:     id,
			SelectedAnswer: r.SelectedAnswer,
			TimeTaken:      *r.TimeTaken,
			IsCorrect:      r.IsCorrect,
			Category:       category,
		})
	}

	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("%d of %d responses are invalid", countEntries(violations), len(raw)),
			violations,
		)
	}
	return out, nil
}

func countEntries(violations []apperrors.FieldViolation) int {
	entries := map[string]bool{}
	for _, v := range violations {
		entries[v.Field[:strings.Index(v.Field, "]")+1]] = true
	}
	return len(entries)
}
