package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus enumerates the lifecycle of a submission. A submission is
// created pending and finalized exactly once; it stays pending when the
// pipeline fails before every test case was positively confirmed.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusAccepted = "accepted"
	SubmissionStatusRejected = "rejected"
)

// Submission is a user's judged attempt at a problem. The ID is supplied by
// the caller and doubles as the idempotency key for retries.
type Submission struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	ProblemID   string    `gorm:"size:128;not null;index" json:"problem_id"`
	UserID      string    `gorm:"size:128;not null;index" json:"user_id"`
	ContestID   *string   `gorm:"size:128;index" json:"contest_id,omitempty"`
	Language    string    `gorm:"size:32;not null" json:"language"`
	Code        string    `gorm:"type:text;not null" json:"code"`
	Status      string    `gorm:"size:16;not null;default:pending" json:"status"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	TestCaseResults []TestCaseResult `gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test_case_results,omitempty"`
}

// IsContestScoped reports whether the submission counts toward a contest
// scoreboard.
func (s Submission) IsContestScoped() bool {
	return s.ContestID != nil && *s.ContestID != ""
}

// TestCaseResult records the outcome of one test case for one submission.
// Rows are append-only; (submission, number) is unique so replays of the same
// submission never duplicate results.
type TestCaseResult struct {
	ID              uint              `gorm:"primaryKey" json:"-"`
	SubmissionID    string            `gorm:"size:128;not null;uniqueIndex:idx_submission_case" json:"submission_id"`
	Number          int               `gorm:"not null;uniqueIndex:idx_submission_case" json:"number"`
	Passed          bool              `gorm:"not null" json:"passed"`
	ExecutionTimeMs int               `gorm:"not null;default:0" json:"execution_time_ms"`
	MemoryKB        int               `gorm:"not null;default:0" json:"memory_kb"`
	Verdict         string            `gorm:"size:64" json:"verdict"`
	Raw             datatypes.JSONMap `json:"raw,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
