package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryPolicy shapes DoWithRetry for one call profile.
type RetryPolicy struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// The two outbound call profiles of this bot back off differently: a
// chat completion is slow and worth waiting for, an image lookup is
// quick, quota-bound, and soft-failed by its caller anyway.
var (
	ChatRetryPolicy   = RetryPolicy{MaxRetries: 3, BaseBackoff: time.Second}
	SearchRetryPolicy = RetryPolicy{MaxRetries: 2, BaseBackoff: 500 * time.Millisecond}
)

// httpStatusError carries a non-2xx response through the retry loop so
// the final error names the status that exhausted the attempts.
type httpStatusError struct {
	statusCode int
	body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.statusCode, e.body)
}

// DoWithRetry issues the request, retrying network errors, 5xx and 429
// with jittered quadratic backoff per the policy. buildReq is called
// per attempt because a request body cannot be replayed.
func DoWithRetry(ctx context.Context, client *http.Client, policy RetryPolicy, buildReq func() (*http.Request, error), logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			base := time.Duration(attempt*attempt) * policy.BaseBackoff
			backoff := base + time.Duration(rand.Int64N(int64(base/2+1)))
			logger.Warn("retrying request", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < policy.MaxRetries {
				logger.Warn("request failed, will retry", "err", err)
				continue
			}
			return nil, fmt.Errorf("request failed after %d retries: %w", policy.MaxRetries, err)
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = &httpStatusError{statusCode: resp.StatusCode, body: string(body)}
			if attempt < policy.MaxRetries {
				logger.Warn("transient server error, will retry",
					"status", resp.StatusCode, "err", lastErr)
				continue
			}
			return nil, fmt.Errorf("server error after %d retries: %w", policy.MaxRetries, lastErr)
		}

		return resp, nil
	}

	return nil, lastErr
}
