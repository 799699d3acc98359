package judge0

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func newTestClient(t *testing.T, handler http.HandlerFunc, attempts int) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{
		BaseURL:         server.URL,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: attempts,
	}, zerolog.Nop())
}

func TestRunBatchReturnsResultsInSubmissionOrder(t *testing.T) {
	polls := int32(0)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var payload struct {
				Submissions []submissionPayload `json:"submissions"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Len(t, payload.Submissions, 2)
			require.Equal(t, "1 2", payload.Submissions[0].Stdin)
			json.NewEncoder(w).Encode(batchCreateResponse{{Token: "tok-a"}, {Token: "tok-b"}})
		case http.MethodGet:
			attempt := atomic.AddInt32(&polls, 1)
			response := batchPollResponse{Submissions: []Result{
				{Token: "tok-b", Status: Status{ID: StatusAccepted, Description: "Accepted"}, Time: strPtr("0.031"), Memory: intPtr(2048)},
				{Token: "tok-a", Status: Status{ID: StatusProcessing, Description: "Processing"}},
			}}
			if attempt > 1 {
				response.Submissions[1] = Result{Token: "tok-a", Status: Status{ID: 4, Description: "Wrong Answer"}, Time: strPtr("0.100"), Memory: intPtr(4096)}
			}
			json.NewEncoder(w).Encode(response)
		}
	}, 5)

	results, err := client.RunBatch(context.Background(), BatchRequest{
		LanguageID: 71,
		SourceCode: "print(sum(map(int, input().split())))",
		Items: []Item{
			{Stdin: "1 2", ExpectedOutput: "3"},
			{Stdin: "3 4", ExpectedOutput: "7"},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "tok-a", results[0].Token, "results must follow submission order, not completion order")
	require.Equal(t, 4, results[0].Status.ID)
	require.Equal(t, "tok-b", results[1].Token)
	require.Equal(t, StatusAccepted, results[1].Status.ID)
}

func TestRunBatchTimesOutWhenItemsStayRunning(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			json.NewEncoder(w).Encode(batchCreateResponse{{Token: "tok-a"}})
		case http.MethodGet:
			json.NewEncoder(w).Encode(batchPollResponse{Submissions: []Result{
				{Token: "tok-a", Status: Status{ID: StatusInQueue, Description: "In Queue"}},
			}})
		}
	}, 3)

	results, err := client.RunBatch(context.Background(), BatchRequest{LanguageID: 71, SourceCode: "x", Items: []Item{{Stdin: "1"}}})
	require.Nil(t, results, "no partial verdict may be synthesized on timeout")
	require.True(t, errors.Is(err, ErrTimeout))
}

func TestRunBatchSurfacesBackendErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
	}, 3)

	_, err := client.RunBatch(context.Background(), BatchRequest{LanguageID: 71, SourceCode: "x", Items: []Item{{Stdin: "1"}}})
	require.True(t, errors.Is(err, ErrBackend))
}

func TestRunBatchRejectsTokenCountMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchCreateResponse{{Token: "only-one"}})
	}, 3)

	_, err := client.RunBatch(context.Background(), BatchRequest{LanguageID: 71, SourceCode: "x", Items: []Item{{Stdin: "1"}, {Stdin: "2"}}})
	require.True(t, errors.Is(err, ErrBackend))
}

func TestLanguageIDFallsBackToDefaults(t *testing.T) {
	client := New(Config{BaseURL: "http://judge0.local"}, zerolog.Nop())

	id, ok := client.LanguageID("Python")
	require.True(t, ok)
	require.Equal(t, 71, id)

	_, ok = client.LanguageID("brainfuck")
	require.False(t, ok)
}
