package agentapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultBackoff = 500 * time.Millisecond

// doRequestWithRetry retries transport errors, 429 and 5xx responses up to
// maxAttempts. The last response is returned as is so the caller can read
// the error envelope.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("agentapi: read request body: %w", err)
		}
		_ = req.Body.Close()
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
	}

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("agentapi: request canceled: %w", err)
		}

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("agentapi: reset request body: %w", err)
			}
			req.Body = body
		}

		resp, err := c.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry || attempt == c.maxAttempts-1 {
			if err != nil {
				return nil, fmt.Errorf("agentapi: request failed after %d attempts: %w", attempt+1, err)
			}
			return resp, nil
		}

		if err != nil {
			c.logger.Warn("agentapi: retrying after error",
				zap.Int("attempt", attempt+1), zap.Int("max_attempts", c.maxAttempts), zap.Error(err))
		} else {
			c.logger.Warn("agentapi: retrying after status",
				zap.Int("attempt", attempt+1), zap.Int("max_attempts", c.maxAttempts), zap.Int("status", resp.StatusCode))
			_ = resp.Body.Close()
		}

		backoff := c.baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("agentapi: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
