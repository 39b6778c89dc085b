package platform

import (
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
)

// Platform identifies one of the operating systems switcher supports
type Platform string

const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
	MacOS   Platform = "macos"
)

// ErrUnsupportedPlatform is returned when the host OS has no Platform
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// All returns every supported platform
func All() []Platform {
	return []Platform{Windows, Linux, MacOS}
}

// Current returns the platform of the running process
func Current() (Platform, error) {
	return fromGOOS(runtime.GOOS)
}

func fromGOOS(goos string) (Platform, error) {
	switch goos {
	case "windows":
		return Windows, nil
	case "linux":
		return Linux, nil
	case "darwin":
		return MacOS, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

// Parse converts a user supplied name into a Platform
func Parse(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows":
		return Windows, nil
	case "linux":
		return Linux, nil
	case "macos", "darwin", "mac":
		return MacOS, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, name)
	}
}

func (p Platform) String() string {
	return string(p)
}

// Separator returns the path separator used by the platform
func (p Platform) Separator() string {
	if p == Windows {
		return `\`
	}
	return "/"
}

// ToSlash rewrites platform separators as forward slashes
func (p Platform) ToSlash(s string) string {
	if p == Windows {
		return strings.ReplaceAll(s, `\`, "/")
	}
	return s
}

// FromSlash rewrites forward slashes as platform separators
func (p Platform) FromSlash(s string) string {
	if p == Windows {
		return strings.ReplaceAll(s, "/", `\`)
	}
	return s
}

// IsAbs reports whether s is an absolute path on the platform.
// Windows accepts drive paths (C:\, C:/) and UNC paths.
func (p Platform) IsAbs(s string) bool {
	if p != Windows {
		return strings.HasPrefix(s, "/")
	}
	s = p.ToSlash(s)
	if strings.HasPrefix(s, "//") {
		return true
	}
	return len(s) >= 3 && isDriveLetter(s[0]) && s[1] == ':' && s[2] == '/'
}

// Join joins path elements and cleans the result, rendering it with the
// platform separator. Empty elements are ignored.
func (p Platform) Join(elems ...string) string {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			parts = append(parts, p.ToSlash(e))
		}
	}
	if len(parts) == 0 {
		return ""
	}

	joined := strings.Join(parts, "/")
	unc := p == Windows && strings.HasPrefix(joined, "//")
	cleaned := path.Clean(joined)
	if unc {
		cleaned = "/" + cleaned
	}
	return p.FromSlash(cleaned)
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
