package httpinfra

import (
	"context"
	"errors"
	"net/http"
)

// BackoffRetryPolicy retries transport errors, 429 and 5xx responses with
// exponential backoff.
type BackoffRetryPolicy struct {
	MaxRetries int
	BaseDelay  int // milliseconds
}

func NewBackoffRetryPolicy(maxRetries, baseDelayMs int) *BackoffRetryPolicy {
	return &BackoffRetryPolicy{MaxRetries: maxRetries, BaseDelay: baseDelayMs}
}

func (p *BackoffRetryPolicy) ShouldRetry(status int, err error, attempt int) (bool, int) {
	if attempt >= p.MaxRetries {
		return false, 0
	}
	switch {
	case err != nil:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, 0
		}
	case status == http.StatusTooManyRequests, status >= 500:
	default:
		return false, 0
	}
	return true, p.BaseDelay << attempt
}
