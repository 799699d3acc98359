package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	judgeLatencySeconds   *prometheus.HistogramVec
	judgeFailuresTotal    *prometheus.CounterVec
	testCasesJudgedTotal  prometheus.Counter
	contestRecomputeTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the API and the
// judging pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of judged submissions by final status.",
		}, []string{"status", "language"})

		judgeLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "judge_batch_latency_seconds",
			Help:    "Wall-clock time from batch submit to all-terminal results.",
			Buckets: []float64{0.25, 0.5, 1.0, 2.0, 3.0, 5.0, 8.0, 12.0},
		}, []string{"language"})

		judgeFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "judge_failures_total",
			Help: "Execution backend failures by kind.",
		}, []string{"kind"})

		testCasesJudgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_cases_judged_total",
			Help: "Total number of individual test cases judged.",
		})

		contestRecomputeTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contest_score_recomputes_total",
			Help: "Total number of contest participant score recomputations.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionsTotal,
			judgeLatencySeconds,
			judgeFailuresTotal,
			testCasesJudgedTotal,
			contestRecomputeTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Submissions exposes the counter for judged submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// JudgeLatency exposes the batch latency histogram.
func JudgeLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return judgeLatencySeconds
}

// JudgeFailures exposes the backend failure counter.
func JudgeFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return judgeFailuresTotal
}

// TestCasesJudged exposes the judged test case counter.
func TestCasesJudged() prometheus.Counter {
	RegisterMetrics()
	return testCasesJudgedTotal
}

// ContestRecomputes exposes the score recompute counter.
func ContestRecomputes() prometheus.Counter {
	RegisterMetrics()
	return contestRecomputeTotal
}
