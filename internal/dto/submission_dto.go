package dto

import (
	"time"

	"github.com/algorank/algorank-api/internal/models"
)

// SubmitRequest is the inbound payload for judging a submission. SubmissionID
// is chosen by the caller and acts as the idempotency key for retries.
type SubmitRequest struct {
	ProblemID    string `json:"problem_id" validate:"required"`
	UserID       string `json:"user_id" validate:"required"`
	SubmissionID string `json:"submission_id" validate:"required"`
	Code         string `json:"code" validate:"required,min=1"`
	Language     string `json:"language" validate:"required"`
	ContestID    string `json:"contest_id,omitempty"`
}

// TestCaseResultResponse is one judged test case in API form.
type TestCaseResultResponse struct {
	Number          int    `json:"number"`
	Passed          bool   `json:"passed"`
	ExecutionTimeMs int    `json:"execution_time_ms"`
	MemoryKB        int    `json:"memory_kb"`
	Verdict         string `json:"verdict"`
}

// SubmitResponse summarises the verdict of a judged submission.
type SubmitResponse struct {
	SubmissionID    string                   `json:"submission_id"`
	Status          string                   `json:"status"`
	TestCasesPassed int                      `json:"test_cases_passed"`
	TotalTestCases  int                      `json:"total_test_cases"`
	TestCases       []TestCaseResultResponse `json:"test_cases"`
	ContestID       string                   `json:"contest_id,omitempty"`
	ContestScore    *int                     `json:"contest_score,omitempty"`
}

// SubmissionDetailResponse is a stored submission with its test case results.
type SubmissionDetailResponse struct {
	ID          string                   `json:"id"`
	ProblemID   string                   `json:"problem_id"`
	UserID      string                   `json:"user_id"`
	ContestID   string                   `json:"contest_id,omitempty"`
	Language    string                   `json:"language"`
	Status      string                   `json:"status"`
	SubmittedAt time.Time                `json:"submitted_at"`
	TestCases   []TestCaseResultResponse `json:"test_cases"`
}

// NewTestCaseResultResponse converts a stored result row into API form.
func NewTestCaseResultResponse(result models.TestCaseResult) TestCaseResultResponse {
	return TestCaseResultResponse{
		Number:          result.Number,
		Passed:          result.Passed,
		ExecutionTimeMs: result.ExecutionTimeMs,
		MemoryKB:        result.MemoryKB,
		Verdict:         result.Verdict,
	}
}

// NewSubmissionDetailResponse builds a detail DTO from a model.
func NewSubmissionDetailResponse(submission models.Submission) SubmissionDetailResponse {
	response := SubmissionDetailResponse{
		ID:          submission.ID,
		ProblemID:   submission.ProblemID,
		UserID:      submission.UserID,
		Language:    submission.Language,
		Status:      submission.Status,
		SubmittedAt: submission.SubmittedAt,
	}
	if submission.ContestID != nil {
		response.ContestID = *submission.ContestID
	}

	results := make([]TestCaseResultResponse, 0, len(submission.TestCaseResults))
	for _, result := range submission.TestCaseResults {
		results = append(results, NewTestCaseResultResponse(result))
	}
	response.TestCases = results

	return response
}
