package apphttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpdomain "switcherforgames.com/cli/internal/core/domain/http"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *BackendClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackendClient(srv.URL, "switcher-test", 5*time.Second, nil, nil, zap.NewNop())
}

func TestWebsiteClientDevPluginYAML(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/switcher/dev-get-plugin-yaml", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("code"))
		assert.Equal(t, "switcher-test", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, "uid: x\n")
	})

	data, err := NewWebsiteClient(backend).DevPluginYAML(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "uid: x\n", string(data))
}

func TestWebsiteClientStatusError(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusNotFound)
	})

	_, err := NewWebsiteClient(backend).DevPluginYAML(context.Background(), "nope")
	var statusErr *httpdomain.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Contains(t, string(statusErr.Body), "bad code")
}

func TestWebsiteClientPostMagicLink(t *testing.T) {
	var got map[string]interface{}
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/switcher/magic-link-post", r.URL.Path)
		assert.Equal(t, "m-code", r.Header.Get("MagicLinkCode"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	exe := "/games/WT/aces.exe"
	err := NewWebsiteClient(backend).PostMagicLink(context.Background(), "m-code", GameReport{
		Username:       "sam",
		Game:           "War Thunder",
		GamePath:       "/games/WT",
		ExecutablePath: &exe,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"username":       "sam",
		"game":           "War Thunder",
		"gamePath":       "/games/WT",
		"executablePath": exe,
	}, got)
}

func TestWebsiteClientPostMagicLinkWithoutExecutable(t *testing.T) {
	var raw map[string]interface{}
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	})

	require.NoError(t, NewWebsiteClient(backend).PostMagicLink(context.Background(), "c", GameReport{Game: "G"}))
	v, ok := raw["executablePath"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestGitHubClientRepository(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/123", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, `{"id":123,"name":"wt-plugin","full_name":"sam/wt-plugin","default_branch":"main"}`)
	})

	repo, err := NewGitHubClient(backend).Repository(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, "sam/wt-plugin", repo.FullName)
	assert.Equal(t,
		"https://github.com/sam/wt-plugin/archive/refs/heads/main.zip//wt-plugin-main",
		repo.ArchiveSource())
}

func TestGitHubClientRepositoryErrors(t *testing.T) {
	missing := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := NewGitHubClient(missing).Repository(context.Background(), 1)
	var statusErr *httpdomain.StatusError
	assert.True(t, errors.As(err, &statusErr))

	garbage := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1}`)
	})
	_, err = NewGitHubClient(garbage).Repository(context.Background(), 1)
	assert.Error(t, err)
}

func TestRepositoryArchiveSourceBranchWithSlash(t *testing.T) {
	repo := Repository{Name: "p", FullName: "o/p", DefaultBranch: "release/v1"}
	assert.Equal(t, "https://github.com/o/p/archive/refs/heads/release/v1.zip//p-release-v1", repo.ArchiveSource())
}
