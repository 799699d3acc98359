package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/pkg/judge0"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestAggregateAllPassed(t *testing.T) {
	aggregator := newVerdictAggregator(0, zerolog.Nop())

	results := []judge0.Result{
		{Status: judge0.Status{ID: 3, Description: "Accepted"}, Time: strPtr("0.012"), Memory: intPtr(3040)},
		{Status: judge0.Status{ID: 3, Description: "Accepted"}, Time: strPtr("0.2"), Memory: intPtr(5120)},
	}

	aggregation := aggregator.Aggregate(results)

	require.True(t, aggregation.Accepted)
	require.Equal(t, 2, aggregation.Passed)
	require.Len(t, aggregation.Outcomes, 2)
	require.Equal(t, 1, aggregation.Outcomes[0].Number)
	require.Equal(t, 12, aggregation.Outcomes[0].ExecutionTimeMs)
	require.Equal(t, 3040, aggregation.Outcomes[0].MemoryKB)
	require.Equal(t, 200, aggregation.Outcomes[1].ExecutionTimeMs)
	require.Equal(t, models.SubmissionStatusAccepted, aggregator.Status(aggregation))
}

func TestAggregateSingleFailureRejectsSubmission(t *testing.T) {
	aggregator := newVerdictAggregator(0, zerolog.Nop())

	results := []judge0.Result{
		{Status: judge0.Status{ID: 3, Description: "Accepted"}},
		{Status: judge0.Status{ID: 4, Description: "Wrong Answer"}},
		{Status: judge0.Status{ID: 3, Description: "Accepted"}},
	}

	aggregation := aggregator.Aggregate(results)

	require.False(t, aggregation.Accepted)
	require.Equal(t, 2, aggregation.Passed)
	require.False(t, aggregation.Outcomes[1].Passed)
	require.Equal(t, "Wrong Answer", aggregation.Outcomes[1].Verdict)
	require.Equal(t, models.SubmissionStatusRejected, aggregator.Status(aggregation))
}

func TestAggregateUnknownStatusFails(t *testing.T) {
	aggregator := newVerdictAggregator(0, zerolog.Nop())

	aggregation := aggregator.Aggregate([]judge0.Result{
		{Status: judge0.Status{ID: 99, Description: "Mystery"}},
	})

	require.False(t, aggregation.Accepted)
	require.Equal(t, 0, aggregation.Passed)
	require.Equal(t, "Mystery", aggregation.Outcomes[0].Verdict)
}

func TestAggregateEmptyResultsRejected(t *testing.T) {
	aggregator := newVerdictAggregator(0, zerolog.Nop())

	aggregation := aggregator.Aggregate(nil)

	require.False(t, aggregation.Accepted)
	require.Empty(t, aggregation.Outcomes)
	require.Equal(t, models.SubmissionStatusRejected, aggregator.Status(aggregation))
}

func TestAggregateConfigurableAcceptedID(t *testing.T) {
	aggregator := newVerdictAggregator(7, zerolog.Nop())

	aggregation := aggregator.Aggregate([]judge0.Result{
		{Status: judge0.Status{ID: 7, Description: "Custom OK"}},
		{Status: judge0.Status{ID: 3, Description: "Accepted"}},
	})

	require.False(t, aggregation.Accepted)
	require.True(t, aggregation.Outcomes[0].Passed)
	require.False(t, aggregation.Outcomes[1].Passed)
}

func TestExecutionTimeParsing(t *testing.T) {
	require.Equal(t, 0, executionTimeMs(nil))
	require.Equal(t, 0, executionTimeMs(strPtr("garbage")))
	require.Equal(t, 1500, executionTimeMs(strPtr("1.4996")))
	require.Equal(t, 0, memoryKB(nil))
	require.Equal(t, 256, memoryKB(intPtr(256)))
}
