package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// retryClient wraps any Client with exponential-backoff retries.
type retryClient struct {
	inner      Client
	maxRetries int
	baseDelay  time.Duration
}

func wrapWithRetry(client Client, maxRetries int) Client {
	if maxRetries <= 1 {
		return client
	}
	return &retryClient{
		inner:      client,
		maxRetries: maxRetries,
		baseDelay:  500 * time.Millisecond,
	}
}

func (r *retryClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		delay := r.backoffDelay(attempt)
		slog.Warn("LLM request failed, retrying",
			"attempt", attempt+1,
			"max_retries", r.maxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", r.maxRetries, lastErr)
}

func (r *retryClient) GenerateJSON(ctx context.Context, req *Request, out any) error {
	req.JSONMode = true
	resp, err := r.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(resp.Content), out); err != nil {
		return fmt.Errorf("unmarshal JSON response: %w", err)
	}
	return nil
}

func (r *retryClient) Provider() Provider { return r.inner.Provider() }
func (r *retryClient) Close() error       { return r.inner.Close() }

func (r *retryClient) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(float64(r.baseDelay) * math.Pow(2, float64(attempt)))
	if maxDelay := 30 * time.Second; delay > maxDelay {
		return maxDelay
	}
	return delay
}

// isRetryableError reports whether an error is worth retrying: rate limits,
// server errors, and transport timeouts.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, keyword := range []string{"429", "500", "502", "503", "timeout", "deadline exceeded", "connection reset"} {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}
