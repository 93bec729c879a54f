package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"

	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileLookupFailed ErrorCode = "PROFILE_LOOKUP_FAILED"

	ErrCodeDuplicateAttempt   ErrorCode = "DUPLICATE_ATTEMPT"
	ErrCodePersistenceTimeout ErrorCode = "PERSISTENCE_TIMEOUT"
	ErrCodePersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSearchFailed             ErrorCode = "SEARCH_FAILED"

	ErrCodeWorkflowUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"

	ErrCodeRulesInvalid ErrorCode = "RULES_INVALID"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// FieldViolation describes one rejected input field. Validation errors carry
// every violation found, never only the first.
type FieldViolation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	Violations []FieldViolation       `json:"violations,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// As extracts a *StandardError anywhere in err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewValidationError(message string, violations []FieldViolation) *StandardError {
	err := newError(ErrCodeValidationFailed, message, fmt.Sprintf("%d violation(s)", len(violations)), false, nil)
	err.Violations = violations
	return err
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewProfileNotFoundError(userID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Learner profile not found", fmt.Sprintf("userId: %s", userID), false, nil)
}

func NewProfileLookupFailedError(err error) *StandardError {
	return newError(ErrCodeProfileLookupFailed, "Learner profile lookup failed", err.Error(), true, err)
}

func NewDuplicateAttemptError(userID, attemptID string) *StandardError {
	return newError(ErrCodeDuplicateAttempt, "Assessment attempt already recorded",
		fmt.Sprintf("userId: %s, attemptId: %s", userID, attemptID), false, nil)
}

// Persistence errors are never retried: a timed out transaction may race
// with its own rollback, and retrying with a fresh session id would record
// the attempt twice.
func NewPersistenceTimeoutError(err error) *StandardError {
	return newError(ErrCodePersistenceTimeout, "Session persistence timed out", err.Error(), false, err)
}

func NewPersistenceFailedError(err error) *StandardError {
	return newError(ErrCodePersistenceFailed, "Session persistence failed", err.Error(), false, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewSearchFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchFailed, "Catalog search failed", fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

func NewWorkflowUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowUnavailable, "Workflow engine unavailable", fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

func NewRulesInvalidError(details string) *StandardError {
	return newError(ErrCodeRulesInvalid, "Recommendation rules are invalid", details, false, nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "ASSESSMENT_INVALID",
	ErrCodeInvalidInput:             "ASSESSMENT_INVALID",
	ErrCodeProfileNotFound:          "PROFILE_NOT_FOUND",
	ErrCodeProfileLookupFailed:      "PROFILE_LOOKUP_FAILED",
	ErrCodeDuplicateAttempt:         "DUPLICATE_ATTEMPT",
	ErrCodePersistenceTimeout:       "PERSISTENCE_TIMEOUT",
	ErrCodePersistenceFailed:        "PERSISTENCE_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeSearchFailed:             "SEARCH_FAILED",
	ErrCodeWorkflowUnavailable:      "WORKFLOW_ENGINE_UNAVAILABLE",
	ErrCodeRulesInvalid:             "RULES_INVALID",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeProfileLookupFailed,
		ErrCodeSearchFailed,
		ErrCodeWorkflowUnavailable:
		return 3
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if len(stdErr.Violations) > 0 {
		vars["violations"] = stdErr.Violations
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// HTTPStatus maps an error code onto the status returned by the REST layer.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeProfileNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateAttempt:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "DUPLICATE") || strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "RULES"):
		return "RULES"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
