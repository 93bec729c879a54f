package handler

import (
	"encoding/json"
	"net/http"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string                     `json:"error"`
	Code    string                     `json:"code"`
	Details []apperrors.FieldViolation `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeAppError maps err onto its HTTP status. Server-side failures keep
// their cause out of the body and only report the code.
func writeAppError(w http.ResponseWriter, log logger.Logger, err error) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
			"error":     err,
		})
		writeError(w, status, string(stdErr.Code), "internal server error")
		return
	}

	writeJSON(w, status, ErrorResponse{
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Details: stdErr.Violations,
	})
}

// WriteInternalError is used by the recovery middleware.
func WriteInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, string(apperrors.ErrCodeInternal), "internal server error")
}
