package judge0

import "time"

// Well-known Judge0 status identifiers. Only the non-terminal pair is relied
// on structurally; everything else is configuration for the verdict mapping.
const (
	StatusInQueue    = 1
	StatusProcessing = 2
	StatusAccepted   = 3
)

// Status is the backend's classification of one execution.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Terminal reports whether the execution has finished, successfully or not.
func (s Status) Terminal() bool {
	return s.ID != StatusInQueue && s.ID != StatusProcessing
}

// Item is one execution request: run the source against Stdin and compare
// the program output with ExpectedOutput.
type Item struct {
	Stdin          string
	ExpectedOutput string
}

// BatchRequest bundles all test case executions of one submission.
type BatchRequest struct {
	LanguageID int
	SourceCode string
	Items      []Item
}

// Result is the terminal outcome for one batch item. Time is the backend's
// wall-clock seconds as a decimal string; Memory is reported in KB.
type Result struct {
	Token  string  `json:"token"`
	Status Status  `json:"status"`
	Time   *string `json:"time"`
	Memory *int    `json:"memory"`
}

// Config holds the knobs of the execution backend client.
type Config struct {
	BaseURL         string
	APIKey          string
	APIHost         string
	PollInterval    time.Duration
	MaxPollAttempts int
	CPUTimeLimitSec float64
	MemoryLimitKB   int
	Languages       map[string]int
}

// DefaultLanguages maps language slugs to Judge0 CE language identifiers.
func DefaultLanguages() map[string]int {
	return map[string]int{
		"c":      50,
		"cpp":    54,
		"java":   62,
		"python": 71,
	}
}
