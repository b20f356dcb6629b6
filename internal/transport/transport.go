// Package transport issues the outbound HTTP calls to LLM providers,
// attaching per-provider authentication and retrying transient failures.
//
// The retry policy is deliberately blunt: a fixed set of transient HTTP
// statuses, a fixed pause between attempts, no exponential backoff and no
// jitter. Connection-level failures (DNS, refused, timeout) are terminal on
// the first attempt. Each Send is an independent operation; there is no
// shared rate limiter or in-flight deduplication, so concurrent callers get
// concurrent independent retry loops.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Default retry policy, matching the configuration defaults.
const (
	DefaultMaxAttempts = 3
	DefaultPause       = time.Second
)

// transientStatuses is the closed set of HTTP statuses worth retrying
// unchanged: rate limiting and server-side overload.
var transientStatuses = map[int]bool{
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// IsTransientStatus reports whether a status code is in the retryable set.
func IsTransientStatus(code int) bool {
	return transientStatuses[code]
}

// Client sends provider requests with the configured retry policy. The
// zero value is not usable; construct with New.
type Client struct {
	http        *http.Client
	maxAttempts int
	pause       time.Duration
	logger      *log.Logger

	// sleep is swapped out by tests so retry timing is observable
	// without real waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client created with New.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client. This is how the
// caller's timeout knob reaches the network layer, and how tests inject a
// recorder-backed client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetry sets the transient-status retry policy. maxAttempts counts
// total attempts, not re-tries: 3 means the request goes out at most
// three times.
func WithRetry(maxAttempts int, pause time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if pause >= 0 {
			c.pause = pause
		}
	}
}

// WithLogger attaches a logger for debug-level attempt reporting.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client ready to send requests.
func New(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{},
		maxAttempts: DefaultMaxAttempts,
		pause:       DefaultPause,
		logger:      log.New(io.Discard),
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send serializes the body, POSTs it to the endpoint with the given
// credentials, and returns the raw response body on any 2xx status.
//
// Transient statuses are retried with a fixed pause, up to the attempt
// limit, then escalated to a terminal *HTTPError. Any other non-2xx status
// is returned immediately as *HTTPError with zero retries. Network-level
// failures come back as *NetworkError and are never retried.
func (c *Client) Send(ctx context.Context, endpoint string, auth Auth, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	url, err := auth.requestURL(endpoint)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		// A fresh reader per attempt: the previous attempt consumed it.
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		auth.applyHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			// Connection-level failure: terminal, not retried.
			return nil, &NetworkError{Err: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, &NetworkError{Err: fmt.Errorf("reading response body: %w", readErr)}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		if IsTransientStatus(resp.StatusCode) && attempt < c.maxAttempts {
			c.logger.Debug("transient provider status, retrying",
				"status", resp.StatusCode,
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"pause", c.pause,
			)
			if err := c.sleep(ctx, c.pause); err != nil {
				return nil, &NetworkError{Err: err}
			}
			continue
		}

		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Attempts:   attempt,
			Transient:  IsTransientStatus(resp.StatusCode),
		}
	}
}

// sleepCtx pauses for d but wakes early when the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
