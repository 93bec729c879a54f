// internal/models/assessment.go
package models

import "encoding/json"

type ClassLevel string

const (
	Class10th ClassLevel = "10th"
	Class12th ClassLevel = "12th"
)

func (c ClassLevel) Valid() bool {
	return c == Class10th || c == Class12th
}

// RawResponse is one answer as submitted by the client. Pointer fields
// distinguish "missing" from zero.
type RawResponse struct {
	QuestionID     string          `json:"question_id"`
	SelectedAnswer json.RawMessage `json:"selected_answer,omitempty"`
	TimeTaken      *float64        `json:"time_taken"`
	IsCorrect      *bool           `json:"is_correct"`
	Category       string          `json:"category"`
}

// Response is a validated answer. IsCorrect is nil for ungraded items.
type Response struct {
	QuestionID     string          `json:"question_id"`
	SelectedAnswer json.RawMessage `json:"selected_answer,omitempty"`
	TimeTaken      float64         `json:"time_taken"`
	IsCorrect      *bool           `json:"is_correct"`
	Category       string          `json:"category"`
}

// Correct reports a graded, correct answer.
func (r Response) Correct() bool {
	return r.IsCorrect != nil && *r.IsCorrect
}

// TestPerformance is the answer-stream part of a submission. The counters
// are used when no response list is supplied.
type TestPerformance struct {
	TotalQuestions    int           `json:"total_questions"`
	AnsweredQuestions int           `json:"answered_questions"`
	CorrectAnswers    int           `json:"correct_answers"`
	TotalTimeSeconds  float64       `json:"total_time_seconds"`
	Responses         []RawResponse `json:"responses,omitempty"`
}

// Submission is a complete assessment submission.
type Submission struct {
	UserID          string          `json:"user_id"`
	AttemptID       string          `json:"attempt_id,omitempty"`
	StudentClass    ClassLevel      `json:"student_class"`
	AssessmentData  AssessmentData  `json:"assessment_data"`
	TestPerformance TestPerformance `json:"test_performance"`
	Interests       []string        `json:"interests,omitempty"`
}

type CategoryMetrics struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	Speed    float64 `json:"speed"`
	Score    float64 `json:"score"`
}

const (
	WarningNoAnsweredQuestions = "no_answered_questions"
	WarningCountersMismatch    = "counters_mismatch"
)

// PerformanceMetrics summarises an answer stream. Accuracy and
// WeightedScore are percentages, Speed is seconds per answered question.
type PerformanceMetrics struct {
	TotalQuestions    int                        `json:"total_questions"`
	AnsweredQuestions int                        `json:"answered_questions"`
	CorrectAnswers    int                        `json:"correct_answers"`
	TotalTimeSeconds  float64                    `json:"total_time_seconds"`
	Accuracy          float64                    `json:"accuracy"`
	Speed             float64                    `json:"speed"`
	WeightedScore     float64                    `json:"weighted_score"`
	CategoryBreakdown map[string]CategoryMetrics `json:"subject_breakdown"`
	Warnings          []string                   `json:"warnings,omitempty"`
}

func (m PerformanceMetrics) HasWarning(w string) bool {
	for _, existing := range m.Warnings {
		if existing == w {
			return true
		}
	}
	return false
}
