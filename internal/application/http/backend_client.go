package apphttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	httpdomain "switcherforgames.com/cli/internal/core/domain/http"
	httpports "switcherforgames.com/cli/internal/core/ports/http"
	httpinfra "switcherforgames.com/cli/internal/infrastructure/http"
)

type BackendClient struct {
	endpoint  httpdomain.BackendEndpoint
	requester httpports.HttpRequester
	headers   httpports.HeaderProvider
}

func NewBackendClient(baseURL, userAgent string, timeout time.Duration, headers httpports.HeaderProvider, retry httpports.RetryPolicy, logger *zap.Logger) *BackendClient {
	return NewBackendClientWithRequester(baseURL, userAgent, headers, httpinfra.NewStdHttpRequester(timeout, retry, logger))
}

func NewBackendClientWithRequester(baseURL, userAgent string, headers httpports.HeaderProvider, requester httpports.HttpRequester) *BackendClient {
	if headers == nil {
		headers = httpinfra.StaticHeaders(nil)
	}
	return &BackendClient{
		endpoint:  httpdomain.BackendEndpoint{BaseURL: baseURL, UserAgent: userAgent},
		requester: requester,
		headers:   headers,
	}
}

func (c *BackendClient) BaseURL() string {
	return c.endpoint.BaseURL
}

func (c *BackendClient) PostJSON(ctx context.Context, path string, payload interface{}, extraHeaders map[string]string) (int, map[string][]string, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, map[string]string{"Content-Type": "application/json"}, body, extraHeaders, nil)
}

func (c *BackendClient) GetJSON(ctx context.Context, path string, extraHeaders map[string]string, query map[string]string) (int, map[string][]string, []byte, error) {
	return c.do(ctx, http.MethodGet, path, map[string]string{"Accept": "application/json"}, nil, extraHeaders, query)
}

func (c *BackendClient) GetRaw(ctx context.Context, path string, extraHeaders map[string]string, query map[string]string) (int, map[string][]string, []byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil, extraHeaders, query)
}

// Expect2xx turns a non-2xx status into a *httpdomain.StatusError
func (c *BackendClient) Expect2xx(method, path string, status int, body []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !httpdomain.IsSuccess(status) {
		return nil, &httpdomain.StatusError{Method: method, URL: c.endpoint.BaseURL + path, Status: status, Body: body}
	}
	return body, nil
}

func (c *BackendClient) do(ctx context.Context, method, path string, baseHeaders map[string]string, body []byte, extraHeaders map[string]string, query map[string]string) (int, map[string][]string, []byte, error) {
	h, err := c.headers.Headers(ctx)
	if err != nil {
		return 0, nil, nil, err
	}
	headers := httpinfra.MergeHeaders(baseHeaders, h)
	headers = httpinfra.MergeHeaders(headers, extraHeaders)

	return c.requester.Do(ctx, c.endpoint, httpdomain.RequestContext{
		Method:  method,
		Path:    path,
		Query:   query,
		Headers: headers,
		Body:    body,
	})
}
