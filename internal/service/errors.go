package service

import "errors"

// ErrProblemNotFound indicates the submitted problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// ErrTestCasesNotFound indicates the problem has no test case location.
var ErrTestCasesNotFound = errors.New("test cases not found")

// ErrEmptyTestSet indicates the problem's test case location holds zero cases.
var ErrEmptyTestSet = errors.New("problem has no test cases")

// ErrUnsupportedLanguage indicates the requested language is not configured.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrExecutionBackend indicates a transport or protocol failure talking to
// the execution backend.
var ErrExecutionBackend = errors.New("execution backend unavailable")

// ErrExecutionTimeout indicates the backend never reached a terminal state
// within the polling bound.
var ErrExecutionTimeout = errors.New("execution timed out")

// ErrPersistence indicates a datastore write failed; the submission result is
// unknown to the scoreboard and the caller may retry with the same
// submission id.
var ErrPersistence = errors.New("failed to persist submission state")

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrContestNotFound indicates the contest cannot be located.
var ErrContestNotFound = errors.New("contest not found")
