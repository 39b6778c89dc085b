// Package links recognises the switcher:// links the website opens the
// application with.
package links

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the action requested by a link
type Kind string

const (
	MagicLink     Kind = "magic-link"
	InstallPlugin Kind = "install-plugin"
	DevInstall    Kind = "dev-install"
)

// ErrNoLink is returned when an argument is not a switcher link
var ErrNoLink = errors.New("not a switcher link")

// Link is one parsed link argument
type Link struct {
	Kind Kind
	// Code is set for magic-link and dev-install links
	Code string
	// GitHubID is set for install-plugin links
	GitHubID int64
}

// ParseLink parses a single argument such as switcher://install-plugin?github=123
func ParseLink(arg string) (Link, error) {
	switch {
	case strings.Contains(arg, string(MagicLink)):
		code, err := valueAfter(arg, "code=")
		return Link{Kind: MagicLink, Code: code}, err
	case strings.Contains(arg, string(DevInstall)):
		code, err := valueAfter(arg, "code=")
		return Link{Kind: DevInstall, Code: code}, err
	case strings.Contains(arg, string(InstallPlugin)):
		raw, err := valueAfter(arg, "github=")
		if err != nil {
			return Link{Kind: InstallPlugin}, err
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Link{Kind: InstallPlugin}, fmt.Errorf("invalid GitHub id %q in %s", raw, arg)
		}
		return Link{Kind: InstallPlugin, GitHubID: id}, nil
	}
	return Link{}, fmt.Errorf("%w: %s", ErrNoLink, arg)
}

// Parse returns the first link of each kind found in args; malformed link
// arguments are skipped.
func Parse(args []string) []Link {
	var out []Link
	seen := map[Kind]bool{}
	for _, arg := range args {
		l, err := ParseLink(arg)
		if err != nil || seen[l.Kind] {
			continue
		}
		seen[l.Kind] = true
		out = append(out, l)
	}
	return out
}

// Strip returns args without any link argument
func Strip(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if isLink(arg) {
			continue
		}
		out = append(out, arg)
	}
	return out
}

func isLink(arg string) bool {
	for _, k := range []Kind{MagicLink, InstallPlugin, DevInstall} {
		if strings.Contains(arg, string(k)) {
			return true
		}
	}
	return false
}

// valueAfter returns the text following the last key, up to the next
// query separator, without trailing slashes.
func valueAfter(arg, key string) (string, error) {
	i := strings.LastIndex(arg, key)
	if i < 0 {
		return "", fmt.Errorf("missing %q in %s", strings.TrimSuffix(key, "="), arg)
	}
	v := arg[i+len(key):]
	if j := strings.IndexAny(v, "&#"); j >= 0 {
		v = v[:j]
	}
	v = strings.TrimRight(v, "/")
	if v == "" {
		return "", fmt.Errorf("empty %q in %s", strings.TrimSuffix(key, "="), arg)
	}
	return v, nil
}
