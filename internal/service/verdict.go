package service

import (
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/pkg/judge0"
)

// knownVerdicts is the documented terminal status vocabulary of the execution
// backend. Anything outside it is treated as a failure and logged; a status
// is never silently treated as a pass.
var knownVerdicts = map[int]string{
	3:  "Accepted",
	4:  "Wrong Answer",
	5:  "Time Limit Exceeded",
	6:  "Compilation Error",
	7:  "Runtime Error (SIGSEGV)",
	8:  "Runtime Error (SIGXFSZ)",
	9:  "Runtime Error (SIGFPE)",
	10: "Runtime Error (SIGABRT)",
	11: "Runtime Error (NZEC)",
	12: "Runtime Error (Other)",
	13: "Internal Error",
	14: "Exec Format Error",
}

// TestCaseOutcome is the aggregator's classification of one terminal backend
// result, in the original test case order.
type TestCaseOutcome struct {
	Number          int
	Passed          bool
	ExecutionTimeMs int
	MemoryKB        int
	Verdict         string
	Raw             map[string]interface{}
}

// Aggregation is the overall verdict of a submission plus its per-case detail.
type Aggregation struct {
	Accepted bool
	Passed   int
	Outcomes []TestCaseOutcome
}

// verdictAggregator maps terminal backend results to pass/fail outcomes. The
// accepted status id is configuration, not a business constant: the backend
// owns its status vocabulary.
type verdictAggregator struct {
	acceptedStatusID int
	logger           zerolog.Logger
}

func newVerdictAggregator(acceptedStatusID int, logger zerolog.Logger) *verdictAggregator {
	if acceptedStatusID == 0 {
		acceptedStatusID = judge0.StatusAccepted
	}
	return &verdictAggregator{
		acceptedStatusID: acceptedStatusID,
		logger:           logger.With().Str("component", "verdict_aggregator").Logger(),
	}
}

// Aggregate classifies every result and derives the overall verdict:
// accepted iff every test case passed. An empty result set is rejected.
func (a *verdictAggregator) Aggregate(results []judge0.Result) Aggregation {
	aggregation := Aggregation{
		Accepted: len(results) > 0,
		Outcomes: make([]TestCaseOutcome, 0, len(results)),
	}

	for i, result := range results {
		outcome := TestCaseOutcome{
			Number:          i + 1,
			Passed:          result.Status.ID == a.acceptedStatusID,
			ExecutionTimeMs: executionTimeMs(result.Time),
			MemoryKB:        memoryKB(result.Memory),
			Verdict:         verdictLabel(result.Status),
			Raw: map[string]interface{}{
				"status_id":          result.Status.ID,
				"status_description": result.Status.Description,
			},
		}

		if _, known := knownVerdicts[result.Status.ID]; !known {
			a.logger.Warn().
				Int("status_id", result.Status.ID).
				Str("description", result.Status.Description).
				Int("test_case", outcome.Number).
				Msg("unknown backend status, treating as failed")
		}

		if outcome.Passed {
			aggregation.Passed++
		} else {
			aggregation.Accepted = false
		}
		aggregation.Outcomes = append(aggregation.Outcomes, outcome)
	}

	return aggregation
}

func (a *verdictAggregator) Status(aggregation Aggregation) string {
	if aggregation.Accepted {
		return models.SubmissionStatusAccepted
	}
	return models.SubmissionStatusRejected
}

func verdictLabel(status judge0.Status) string {
	if status.Description != "" {
		return status.Description
	}
	if label, ok := knownVerdicts[status.ID]; ok {
		return label
	}
	return "Unknown"
}

// executionTimeMs converts the backend's wall-clock seconds into rounded
// milliseconds.
func executionTimeMs(seconds *string) int {
	if seconds == nil {
		return 0
	}
	parsed, err := strconv.ParseFloat(*seconds, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(parsed * 1000))
}

func memoryKB(memory *int) int {
	if memory == nil {
		return 0
	}
	return *memory
}
