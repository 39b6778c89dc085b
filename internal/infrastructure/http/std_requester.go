package httpinfra

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	httpdomain "switcherforgames.com/cli/internal/core/domain/http"
	httpports "switcherforgames.com/cli/internal/core/ports/http"
)

type StdHttpRequester struct {
	client *http.Client
	retry  httpports.RetryPolicy
	logger *zap.Logger
}

func NewStdHttpRequester(timeout time.Duration, retry httpports.RetryPolicy, logger *zap.Logger) *StdHttpRequester {
	return &StdHttpRequester{
		client: &http.Client{Timeout: timeout},
		retry:  retry,
		logger: logger.Named("http"),
	}
}

func (r *StdHttpRequester) Do(ctx context.Context, endpoint httpdomain.BackendEndpoint, req httpdomain.RequestContext) (int, map[string][]string, []byte, error) {
	fullURL, err := joinURL(endpoint.BaseURL, req.Path, req.Query)
	if err != nil {
		return 0, nil, nil, err
	}

	retry := r.retry
	if !idempotent(req.Method) {
		retry = nil
	}

	for attempt := 0; ; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader(req.Body))
		if err != nil {
			return 0, nil, nil, err
		}
		for k, v := range req.Headers {
			httpReq.Header.Set(k, v)
		}
		if endpoint.UserAgent != "" {
			httpReq.Header.Set("User-Agent", endpoint.UserAgent)
		}

		r.logger.Debug("request", zap.String("method", req.Method), zap.String("url", fullURL), zap.Int("attempt", attempt))
		resp, err := r.client.Do(httpReq)
		if err != nil {
			if r.wait(ctx, retry, 0, err, attempt) {
				continue
			}
			return 0, nil, nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return 0, nil, nil, err
		}

		if r.wait(ctx, retry, resp.StatusCode, nil, attempt) {
			continue
		}
		return resp.StatusCode, resp.Header, body, nil
	}
}

// wait sleeps for the backoff of the retry policy and reports whether to retry
func (r *StdHttpRequester) wait(ctx context.Context, policy httpports.RetryPolicy, status int, err error, attempt int) bool {
	if policy == nil {
		return false
	}
	retry, backoff := policy.ShouldRetry(status, err, attempt)
	if !retry {
		return false
	}

	r.logger.Debug("retrying", zap.Int("status", status), zap.Error(err), zap.Int("backoff_ms", backoff))
	timer := time.NewTimer(time.Duration(backoff) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// idempotent reports whether a request can be repeated without side effects.
// Other requests, such as posting a game report, are sent once.
func idempotent(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

func joinURL(base, p string, q map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = joinPath(u.Path, p)
	if len(q) > 0 {
		vals := u.Query()
		for k, v := range q {
			vals.Set(k, v)
		}
		u.RawQuery = vals.Encode()
	}
	return u.String(), nil
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a[len(a)-1] == '/' {
		a = a[:len(a)-1]
	}
	if b[0] != '/' {
		b = "/" + b
	}
	return a + b
}

var _ httpports.HttpRequester = (*StdHttpRequester)(nil)
