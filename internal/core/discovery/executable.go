package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/spf13/afero"

	"switcherforgames.com/cli/internal/core/domain/platform"
)

// ErrNoExecutable is returned when a game folder holds no executable
var ErrNoExecutable = errors.New("no executable found")

// maxWalkDepth bounds how deep FindExecutable descends into a game folder
const maxWalkDepth = 6

// FindExecutable returns the most promising executable under gameDir.
// Executables inside a folder containing "bin" or "win" are preferred, the
// rest are ranked by similarity to the game name, and uninstallers are
// dropped unless nothing else remains.
func FindExecutable(fs afero.Fs, gameDir, game string, p platform.Platform) (string, error) {
	candidates, err := executables(fs, gameDir, p)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", ErrNoExecutable
	}
	return RankExecutables(gameDir, game, candidates)[0], nil
}

// RankExecutables orders executable paths from most to least likely
func RankExecutables(gameDir, game string, paths []string) []string {
	ranked := append([]string(nil), paths...)

	if preferred := filter(ranked, func(p string) bool { return inBinOrWin(gameDir, p) }); len(preferred) > 0 {
		ranked = preferred
	}

	target := normalizeName(game)
	score := make(map[string]float64, len(ranked))
	for _, p := range ranked {
		score[p] = levenshtein.Similarity(target, normalizeName(stem(p)), nil)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if score[ranked[i]] != score[ranked[j]] {
			return score[ranked[i]] > score[ranked[j]]
		}
		if len(ranked[i]) != len(ranked[j]) {
			return len(ranked[i]) < len(ranked[j])
		}
		return ranked[i] < ranked[j]
	})

	if kept := filter(ranked, func(p string) bool {
		return !strings.Contains(strings.ToLower(filepath.Base(p)), "unins")
	}); len(kept) > 0 {
		ranked = kept
	}
	return ranked
}

func executables(fs afero.Fs, root string, p platform.Platform) ([]string, error) {
	var out []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if info.IsDir() {
			if depth(root, path) > maxWalkDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if isExecutable(info, p) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func isExecutable(info os.FileInfo, p platform.Platform) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	if strings.EqualFold(filepath.Ext(info.Name()), ".exe") {
		return true
	}
	return p != platform.Windows && info.Mode().Perm()&0o111 != 0
}

func inBinOrWin(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return false
	}
	lower := strings.ToLower(filepath.ToSlash(rel))
	return strings.Contains(lower, "bin") || strings.Contains(lower, "win")
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func filter(paths []string, keep func(string) bool) []string {
	var out []string
	for _, p := range paths {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
