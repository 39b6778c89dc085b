package apphttp

import (
	"context"
	"net/http"
)

const (
	DefaultWebsiteURL = "https://switcherforgames.com"

	devPluginPath = "/api/switcher/dev-get-plugin-yaml"
	magicLinkPath = "/api/switcher/magic-link-post"
)

// GameReport is the payload posted for a magic link
type GameReport struct {
	Username       string  `json:"username"`
	Game           string  `json:"game"`
	GamePath       string  `json:"gamePath"`
	ExecutablePath *string `json:"executablePath"`
}

// WebsiteClient talks to the switcher website
type WebsiteClient struct {
	backend *BackendClient
}

func NewWebsiteClient(backend *BackendClient) *WebsiteClient {
	return &WebsiteClient{backend: backend}
}

// DevPluginYAML downloads the descriptor published for a dev-install code
func (c *WebsiteClient) DevPluginYAML(ctx context.Context, code string) ([]byte, error) {
	status, _, body, err := c.backend.GetRaw(ctx, devPluginPath, nil, map[string]string{"code": code})
	return c.backend.Expect2xx(http.MethodGet, devPluginPath, status, body, err)
}

// PostMagicLink sends the report of a discovered game for a magic-link code
func (c *WebsiteClient) PostMagicLink(ctx context.Context, code string, report GameReport) error {
	status, _, body, err := c.backend.PostJSON(ctx, magicLinkPath, report, map[string]string{"MagicLinkCode": code})
	_, err = c.backend.Expect2xx(http.MethodPost, magicLinkPath, status, body, err)
	return err
}
