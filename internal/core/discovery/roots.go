package discovery

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"switcherforgames.com/cli/internal/core/domain/platform"
	"switcherforgames.com/cli/internal/core/pathvar"
)

// DefaultRoots returns the folders that may be launcher libraries on the
// given platform, followed by the extra folders configured by the user.
// Only folders that exist are returned, without duplicates.
func DefaultRoots(p platform.Platform, env pathvar.Environment, fs afero.Fs, extra []string) []string {
	var candidates []string

	switch p {
	case platform.Windows:
		candidates = windowsRoots(fs)
	case platform.Linux, platform.MacOS:
		home, err := env.HomeDir()
		if err == nil {
			candidates = unixRoots(p, fs, home)
		}
	}
	candidates = append(candidates, extra...)

	seen := map[string]bool{}
	var out []string
	for _, c := range candidates {
		c = filepath.Clean(c)
		if seen[c] {
			continue
		}
		if ok, _ := afero.DirExists(fs, c); !ok {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func windowsRoots(fs afero.Fs) []string {
	var out []string
	for d := 'A'; d <= 'Z'; d++ {
		drive := string(d) + `:\`
		if ok, _ := afero.DirExists(fs, drive); !ok {
			continue
		}
		children := childDirs(fs, drive)
		out = append(out, children...)
		for _, child := range children {
			if strings.Contains(strings.ToLower(filepath.Base(child)), "program files") {
				out = append(out, childDirs(fs, child)...)
			}
		}
	}
	return out
}

func unixRoots(p platform.Platform, fs afero.Fs, home string) []string {
	if p == platform.MacOS {
		return []string{filepath.Join(home, "Library", "Application Support", "Steam")}
	}

	out := []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
	}
	return append(out, childDirs(fs, filepath.Join(home, "Games"))...)
}

func childDirs(fs afero.Fs, dir string) []string {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}
