package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		arg  string
		want Link
	}{
		{"switcher://magic-link?code=abc123", Link{Kind: MagicLink, Code: "abc123"}},
		{"switcher://magic-link/?code=abc123/", Link{Kind: MagicLink, Code: "abc123"}},
		{"switcher://dev-install?code=x-y&utm=1", Link{Kind: DevInstall, Code: "x-y"}},
		{"switcher://install-plugin?github=123456", Link{Kind: InstallPlugin, GitHubID: 123456}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseLink(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLinkErrors(t *testing.T) {
	for _, arg := range []string{
		"--debug",
		"switcher://magic-link",
		"switcher://magic-link?code=",
		"switcher://install-plugin?github=abc",
		"switcher://install-plugin?github=-4",
	} {
		t.Run(arg, func(t *testing.T) {
			_, err := ParseLink(arg)
			assert.Error(t, err)
		})
	}

	_, err := ParseLink("plain")
	assert.ErrorIs(t, err, ErrNoLink)
}

func TestParse(t *testing.T) {
	args := []string{
		"switcher",
		"switcher://install-plugin?github=bad",
		"switcher://install-plugin?github=7",
		"switcher://magic-link?code=first",
		"switcher://magic-link?code=second",
	}

	assert.Equal(t, []Link{
		{Kind: InstallPlugin, GitHubID: 7},
		{Kind: MagicLink, Code: "first"},
	}, Parse(args))
	assert.Empty(t, Parse([]string{"switcher", "--debug"}))
}

func TestStrip(t *testing.T) {
	args := []string{"switcher", "switcher://dev-install?code=1", "--debug", "switcher://install-plugin?github=2"}
	assert.Equal(t, []string{"switcher", "--debug"}, Strip(args))
}
