// internal/models/session.go
package models

import "time"

type SessionStatus string

const SessionCompleted SessionStatus = "completed"

// AssessmentSession is the immutable record of one scored submission.
type AssessmentSession struct {
	ID           string             `json:"id" db:"id"`
	UserID       string             `json:"user_id" db:"user_id"`
	AttemptID    string             `json:"attempt_id" db:"attempt_id"`
	ClassLevel   ClassLevel         `json:"class_level" db:"class_level"`
	Status       SessionStatus      `json:"status" db:"status"`
	Metrics      PerformanceMetrics `json:"metrics" db:"metrics"`
	Profile      LearnerProfile     `json:"profile" db:"profile"`
	Insights     Insights           `json:"insights" db:"insights"`
	RulesVersion string             `json:"rules_version" db:"rules_version"`
	CompletedAt  time.Time          `json:"completed_at" db:"completed_at"`
}

// SessionRecord pairs a session with the recommendations it produced; the
// recorder persists both or neither.
type SessionRecord struct {
	Session         AssessmentSession `json:"session"`
	Recommendations RecommendationSet `json:"recommendations"`
}

// SessionReceipt identifies persisted rows.
type SessionReceipt struct {
	SessionID        string    `json:"session_id"`
	RecommendationID string    `json:"recommendation_id"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// StudentProfile is the stored learner record the engine reads.
type StudentProfile struct {
	UserID      string               `json:"user_id" db:"user_id"`
	FullName    string               `json:"full_name" db:"full_name"`
	ClassLevel  ClassLevel           `json:"class_level" db:"class_level"`
	State       string               `json:"state,omitempty" db:"state"`
	City        string               `json:"city,omitempty" db:"city"`
	Interests   []string             `json:"interests,omitempty" db:"interests"`
	Constraints PracticalConstraints `json:"constraints" db:"constraints"`
}
