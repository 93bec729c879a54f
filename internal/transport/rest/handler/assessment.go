package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"assessment-engine/internal/assessment/interests"
	"assessment-engine/internal/assessment/submission"
	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
)

// AssessmentHandler handles submissions and interest analysis
type AssessmentHandler struct {
	submissions *submission.Service
	logger      logger.Logger
}

func NewAssessmentHandler(svc *submission.Service, log logger.Logger) *AssessmentHandler {
	return &AssessmentHandler{submissions: svc, logger: logger.Component(log, "rest.assessment")}
}

// Submit handles POST /v1/assessments/submit
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(apperrors.ErrCodeInvalidInput), "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "could not read request body")
		return
	}

	result, err := h.submissions.SubmitJSON(r.Context(), body)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	h.logger.Info("assessment submitted", map[string]interface{}{
		"sessionId":  result.SessionID,
		"durationMs": time.Since(start).Milliseconds(),
	})
	writeJSON(w, http.StatusOK, result)
}

type analyzeInterestsRequest struct {
	Interests []string `json:"interests"`
}

type analyzeInterestsResponse struct {
	InterestScores map[interests.Category]float64 `json:"interest_scores"`
	StreamAffinity []interests.StreamScore        `json:"stream_affinity"`
}

// AnalyzeInterests handles POST /v1/interests/analyze. The body is either
// {"interests": [...]} or a bare array of strings.
func (h *AssessmentHandler) AnalyzeInterests(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "could not read request body")
		return
	}

	var list []string
	if err := json.Unmarshal(body, &list); err != nil {
		var req analyzeInterestsRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "expected a list of interests")
			return
		}
		list = req.Interests
	}

	scores := interests.Analyze(list)
	writeJSON(w, http.StatusOK, analyzeInterestsResponse{
		InterestScores: scores,
		StreamAffinity: interests.StreamAffinity(scores),
	})
}
