package httpinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpdomain "switcherforgames.com/cli/internal/core/domain/http"
)

func TestStdHttpRequesterRetriesWithBody(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	r := NewStdHttpRequester(time.Second, NewBackoffRetryPolicy(3, 1), zap.NewNop())
	status, _, body, err := r.Do(context.Background(), httpdomain.BackendEndpoint{BaseURL: srv.URL}, httpdomain.RequestContext{
		Method: http.MethodPut,
		Path:   "/x",
		Body:   []byte("payload"),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStdHttpRequesterGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewStdHttpRequester(time.Second, NewBackoffRetryPolicy(1, 1), zap.NewNop())
	status, _, _, err := r.Do(context.Background(), httpdomain.BackendEndpoint{BaseURL: srv.URL}, httpdomain.RequestContext{Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestStdHttpRequesterSendsPostOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewStdHttpRequester(time.Second, NewBackoffRetryPolicy(3, 1), zap.NewNop())
	endpoint := httpdomain.BackendEndpoint{BaseURL: srv.URL}

	status, _, _, err := r.Do(context.Background(), endpoint, httpdomain.RequestContext{Method: http.MethodPost, Body: []byte("{}")})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a POST is never repeated")

	_, _, _, err = r.Do(context.Background(), endpoint, httpdomain.RequestContext{Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls), "a GET is retried")
}

func TestIdempotent(t *testing.T) {
	for _, m := range []string{"", http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete} {
		assert.True(t, idempotent(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPatch} {
		assert.False(t, idempotent(m), m)
	}
}

func TestJoinURL(t *testing.T) {
	u, err := joinURL("https://example.com/api/", "/switcher", map[string]string{"code": "a b"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/switcher?code=a+b", u)
}

func TestBackoffRetryPolicy(t *testing.T) {
	p := NewBackoffRetryPolicy(2, 100)

	retry, delay := p.ShouldRetry(500, nil, 0)
	assert.True(t, retry)
	assert.Equal(t, 100, delay)

	retry, delay = p.ShouldRetry(429, nil, 1)
	assert.True(t, retry)
	assert.Equal(t, 200, delay)

	retry, _ = p.ShouldRetry(500, nil, 2)
	assert.False(t, retry)

	retry, _ = p.ShouldRetry(404, nil, 0)
	assert.False(t, retry)

	retry, _ = p.ShouldRetry(0, context.Canceled, 0)
	assert.False(t, retry)
}

func TestMergeHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, MergeHeaders(map[string]string{"a": "1", "b": "2"}, map[string]string{"b": "3"}))
}
