package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrBackend indicates a transport or protocol failure talking to the
// execution backend. The client never retries; the caller decides.
var ErrBackend = errors.New("execution backend error")

// ErrTimeout indicates the poll bound was reached with items still running.
// No partial results are returned alongside it.
var ErrTimeout = errors.New("execution backend timed out")

// Client submits a batch of executions and waits for every item to reach a
// terminal state. Results come back in submission order.
type Client interface {
	RunBatch(ctx context.Context, req BatchRequest) ([]Result, error)
	LanguageID(slug string) (int, bool)
}

// HTTPClient talks to a Judge0-compatible backend over HTTP.
type HTTPClient struct {
	config Config
	http   *http.Client
	logger zerolog.Logger
}

// New constructs an HTTPClient, filling unset config fields with defaults.
func New(cfg Config, logger zerolog.Logger) *HTTPClient {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 10
	}
	if cfg.CPUTimeLimitSec <= 0 {
		cfg.CPUTimeLimitSec = 2
	}
	if cfg.MemoryLimitKB <= 0 {
		cfg.MemoryLimitKB = 128000
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages()
	}

	return &HTTPClient{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger.With().Str("component", "judge0_client").Logger(),
	}
}

// LanguageID resolves a language slug to the backend's language identifier.
func (c *HTTPClient) LanguageID(slug string) (int, bool) {
	id, ok := c.config.Languages[strings.ToLower(strings.TrimSpace(slug))]
	return id, ok
}

type submissionPayload struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin"`
	ExpectedOutput string  `json:"expected_output"`
	CPUTimeLimit   float64 `json:"cpu_time_limit"`
	MemoryLimit    int     `json:"memory_limit"`
}

type batchCreateResponse []struct {
	Token string `json:"token"`
}

type batchPollResponse struct {
	Submissions []Result `json:"submissions"`
}

// RunBatch submits every item as one batch and polls until all items are
// terminal or the attempt bound is exceeded.
func (c *HTTPClient) RunBatch(ctx context.Context, req BatchRequest) ([]Result, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrBackend)
	}

	tokens, err := c.submitBatch(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("items", len(tokens)).Msg("batch submitted")
	return c.pollBatch(ctx, tokens)
}

func (c *HTTPClient) submitBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	payloads := make([]submissionPayload, 0, len(req.Items))
	for _, item := range req.Items {
		payloads = append(payloads, submissionPayload{
			SourceCode:     req.SourceCode,
			LanguageID:     req.LanguageID,
			Stdin:          item.Stdin,
			ExpectedOutput: item.ExpectedOutput,
			CPUTimeLimit:   c.config.CPUTimeLimitSec,
			MemoryLimit:    c.config.MemoryLimitKB,
		})
	}

	body, err := json.Marshal(map[string]any{"submissions": payloads})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal batch: %v", ErrBackend, err)
	}

	endpoint := c.config.BaseURL + "/submissions/batch?base64_encoded=false"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrBackend, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(httpReq)

	var created batchCreateResponse
	if err := c.do(httpReq, &created); err != nil {
		return nil, err
	}

	if len(created) != len(req.Items) {
		return nil, fmt.Errorf("%w: expected %d tokens, got %d", ErrBackend, len(req.Items), len(created))
	}

	tokens := make([]string, 0, len(created))
	for _, item := range created {
		if item.Token == "" {
			return nil, fmt.Errorf("%w: backend returned an empty token", ErrBackend)
		}
		tokens = append(tokens, item.Token)
	}
	return tokens, nil
}

func (c *HTTPClient) pollBatch(ctx context.Context, tokens []string) ([]Result, error) {
	endpoint := fmt.Sprintf(
		"%s/submissions/batch?tokens=%s&base64_encoded=false&fields=token,status_id,status,time,memory",
		c.config.BaseURL,
		url.QueryEscape(strings.Join(tokens, ",")),
	)

	byToken := make(map[string]Result, len(tokens))

	for attempt := 0; attempt < c.config.MaxPollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrBackend, ctx.Err())
			case <-time.After(c.config.PollInterval):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build poll request: %v", ErrBackend, err)
		}
		c.setAuthHeaders(httpReq)

		var poll batchPollResponse
		if err := c.do(httpReq, &poll); err != nil {
			return nil, err
		}

		pending := 0
		for _, result := range poll.Submissions {
			if result.Status.Terminal() {
				byToken[result.Token] = result
			} else {
				pending++
			}
		}

		if pending == 0 && len(byToken) == len(tokens) {
			ordered := make([]Result, 0, len(tokens))
			for _, token := range tokens {
				result, ok := byToken[token]
				if !ok {
					return nil, fmt.Errorf("%w: missing result for token %s", ErrBackend, token)
				}
				ordered = append(ordered, result)
			}
			return ordered, nil
		}

		c.logger.Debug().Int("attempt", attempt+1).Int("pending", pending).Msg("batch still running")
	}

	return nil, fmt.Errorf("%w: %d items unfinished after %d attempts",
		ErrTimeout, len(tokens)-len(byToken), c.config.MaxPollAttempts)
}

func (c *HTTPClient) setAuthHeaders(req *http.Request) {
	if c.config.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
	}
	if c.config.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.config.APIHost)
	}
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrBackend, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: unexpected status %d: %s", ErrBackend, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrBackend, err)
	}
	return nil
}
