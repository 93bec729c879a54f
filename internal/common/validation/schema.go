// Package validation checks request and response documents against JSON
// schemas and reports every violation at once.
package validation

import (
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	apperrors "assessment-engine/internal/common/errors"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	SubmissionSchemaName = "submission"
	ResultSchemaName     = "result"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON schema. It is safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

func Compile(name string, raw []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

var (
	builtinOnce sync.Once
	builtin     map[string]*Schema
	builtinErr  error
)

// Builtin returns one of the embedded schemas by name.
func Builtin(name string) (*Schema, error) {
	builtinOnce.Do(func() {
		builtin = map[string]*Schema{}
		for _, n := range []string{SubmissionSchemaName, ResultSchemaName} {
			raw, err := schemaFS.ReadFile("schemas/" + n + ".schema.json")
			if err != nil {
				builtinErr = err
				return
			}
			s, err := Compile(n, raw)
			if err != nil {
				builtinErr = err
				return
			}
			builtin[n] = s
		}
	})
	if builtinErr != nil {
		return nil, builtinErr
	}
	s, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return s, nil
}

func (s *Schema) Name() string { return s.name }

// ValidateBytes validates a raw JSON document. A document that is not JSON
// at all is reported as a single INVALID_JSON violation.
func (s *Schema) ValidateBytes(doc []byte) *ValidationResult {
	return s.validate(gojsonschema.NewBytesLoader(doc))
}

// Validate validates a Go value after encoding it as JSON.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	return s.validate(gojsonschema.NewGoLoader(doc))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "",
				Message: fmt.Sprintf("document is not valid JSON: %v", err),
				Code:    "INVALID_JSON",
			}},
		}
	}

	errors := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errors = append(errors, toValidationError(desc))
	}
	sort.SliceStable(errors, func(i, j int) bool { return errors[i].Field < errors[j].Field })

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func toValidationError(desc gojsonschema.ResultError) ValidationError {
	field := ""
	if desc.Context() != nil {
		field = fieldPath(desc.Context().String())
	}
	switch desc.Type() {
	case "required", "additional_property_not_allowed":
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == "" {
				field = prop
			} else {
				field = field + "." + prop
			}
		}
	}
	return ValidationError{
		Field:   field,
		Message: desc.Description(),
		Code:    errorCode(desc.Type()),
	}
}

// fieldPath turns "(root).test_performance.responses.0.time_taken" into
// "test_performance.responses[0].time_taken".
func fieldPath(raw string) string {
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "(root)"), ".")
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for i, part := range strings.Split(raw, ".") {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func errorCode(kind string) string {
	switch kind {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "number_gte", "number_gt":
		return "MINIMUM_VIOLATION"
	case "number_lte", "number_lt":
		return "MAXIMUM_VIOLATION"
	case "string_gte":
		return "MIN_LENGTH_VIOLATION"
	case "string_lte":
		return "MAX_LENGTH_VIOLATION"
	case "additional_property_not_allowed":
		return "EXTRA_FIELD"
	default:
		return strings.ToUpper(kind)
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// Err converts a failed result into a VALIDATION_FAILED error carrying
// every violation. It returns nil for a valid result.
func (vr *ValidationResult) Err(message string) error {
	if vr.Valid {
		return nil
	}
	violations := make([]apperrors.FieldViolation, len(vr.Errors))
	for i, e := range vr.Errors {
		violations[i] = apperrors.FieldViolation{Field: e.Field, Code: e.Code, Message: e.Message}
	}
	return apperrors.NewValidationError(message, violations)
}
