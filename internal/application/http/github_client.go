package apphttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const DefaultGitHubAPIURL = "https://api.github.com"

// Repository is the subset of the GitHub repository resource used for installs
type Repository struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
	Description   string `json:"description"`
}

// ArchiveSource returns the go-getter source of the default branch archive,
// pointing at the folder GitHub nests the repository in.
func (r Repository) ArchiveSource() string {
	branch := r.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	return fmt.Sprintf("https://github.com/%s/archive/refs/heads/%s.zip//%s-%s",
		r.FullName, branch, r.Name, strings.ReplaceAll(branch, "/", "-"))
}

// GitHubClient reads repositories from the GitHub REST API
type GitHubClient struct {
	backend *BackendClient
}

func NewGitHubClient(backend *BackendClient) *GitHubClient {
	return &GitHubClient{backend: backend}
}

// Repository looks a repository up by its numeric id
func (c *GitHubClient) Repository(ctx context.Context, id int64) (*Repository, error) {
	path := fmt.Sprintf("/repositories/%d", id)
	status, _, body, err := c.backend.GetJSON(ctx, path, map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}, nil)
	body, err = c.backend.Expect2xx(http.MethodGet, path, status, body, err)
	if err != nil {
		return nil, err
	}

	var repo Repository
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, fmt.Errorf("failed to decode repository %d: %w", id, err)
	}
	if repo.FullName == "" || repo.Name == "" {
		return nil, fmt.Errorf("repository %d: response misses its name", id)
	}
	return &repo, nil
}
