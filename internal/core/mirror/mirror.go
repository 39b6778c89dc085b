// Package mirror copies files and directory trees between a game's live
// location and a profile's store, with best-effort candidate fallback.
package mirror

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// ExternalDir holds stored copies of fragments given as absolute paths
const ExternalDir = "_external"

var (
	// ErrSourceMissing is returned when the copy source does not exist
	ErrSourceMissing = errors.New("source does not exist")
	// ErrUnsafeFragment is returned for fragments escaping their root
	ErrUnsafeFragment = errors.New("unsafe path fragment")
	// ErrNoCandidates is returned when MirrorAll receives no fragments
	ErrNoCandidates = errors.New("no candidate paths")
)

// Direction selects which side of a mirror is the source
type Direction int

const (
	// Backup copies from the live location into the store
	Backup Direction = iota
	// Restore copies from the store back to the live location
	Restore
)

func (d Direction) String() string {
	if d == Restore {
		return "restore"
	}
	return "backup"
}

// Locate returns the live and stored locations of a fragment. Relative
// fragments live under liveRoot; absolute ones are stored beneath
// ExternalDir so they can be restored to the same place.
func Locate(liveRoot, storeRoot, fragment string) (live, stored string, err error) {
	if strings.TrimSpace(fragment) == "" {
		return "", "", fmt.Errorf("%w: empty fragment", ErrUnsafeFragment)
	}

	if filepath.IsAbs(fragment) || filepath.VolumeName(fragment) != "" {
		live = filepath.Clean(fragment)
		return live, filepath.Join(storeRoot, ExternalDir, ExternalKey(live)), nil
	}

	rel := filepath.Clean(fragment)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrUnsafeFragment, fragment)
	}
	return filepath.Join(liveRoot, rel), filepath.Join(storeRoot, rel), nil
}

// ExternalKey converts an absolute path into a relative one by dropping
// the volume colon and leading separators, e.g. C:\Games -> C\Games.
func ExternalKey(abs string) string {
	vol := filepath.VolumeName(abs)
	rest := strings.TrimLeft(abs[len(vol):], `\/`)
	vol = strings.TrimLeft(strings.TrimSuffix(vol, ":"), `\/`)
	if vol == "" {
		return rest
	}
	return filepath.Join(vol, rest)
}

// Mirror copies one fragment between liveRoot and storeRoot in the given direction
func Mirror(fs afero.Fs, liveRoot, storeRoot, fragment string, dir Direction) error {
	live, stored, err := Locate(liveRoot, storeRoot, fragment)
	if err != nil {
		return err
	}
	if dir == Restore {
		return Copy(fs, stored, live)
	}
	return Copy(fs, live, stored)
}

// Report lists the outcome of every candidate passed to MirrorAll
type Report struct {
	Copied []string
	Failed map[string]error
}

// Partial reports whether some, but not all, candidates failed
func (r Report) Partial() bool {
	return len(r.Copied) > 0 && len(r.Failed) > 0
}

// CandidatesError is returned when no candidate of MirrorAll succeeded
type CandidatesError struct {
	Direction Direction
	Failures  *multierror.Error
}

func (e *CandidatesError) Error() string {
	return fmt.Sprintf("%s failed for every candidate: %v", e.Direction, e.Failures)
}

func (e *CandidatesError) Unwrap() error {
	return e.Failures
}

// MirrorAll tries every fragment and succeeds when at least one copies.
// Only when all of them fail is the aggregated failure returned.
func MirrorAll(fs afero.Fs, liveRoot, storeRoot string, fragments []string, dir Direction) (Report, error) {
	report := Report{Failed: map[string]error{}}
	if len(fragments) == 0 {
		failures := multierror.Append(nil, ErrNoCandidates)
		return report, &CandidatesError{Direction: dir, Failures: failures}
	}

	var failures *multierror.Error
	for _, fragment := range fragments {
		if err := Mirror(fs, liveRoot, storeRoot, fragment, dir); err != nil {
			report.Failed[fragment] = err
			failures = multierror.Append(failures, fmt.Errorf("%s: %w", fragment, err))
			continue
		}
		report.Copied = append(report.Copied, fragment)
	}

	if len(report.Copied) == 0 {
		failures.ErrorFormat = listFormat
		return report, &CandidatesError{Direction: dir, Failures: failures}
	}
	return report, nil
}

// Copy copies a file or a whole directory tree from src to dst,
// overwriting existing files.
func Copy(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if info.IsDir() {
		return CopyTree(fs, src, dst)
	}
	return copyFile(fs, src, dst, info)
}

// CopyTree copies the directory src into dst, creating dst as needed
func CopyTree(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := fs.Stat(p)
			if err != nil || resolved.IsDir() {
				return nil
			}
			info = resolved
		}

		if info.IsDir() {
			if err := fs.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}
		return copyFile(fs, p, target, info)
	})
}

func copyFile(fs afero.Fs, src, dst string, info os.FileInfo) error {
	if err := fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := openDestination(fs, dst, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", dst, err)
	}
	if err := fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set times of %s: %w", dst, err)
	}
	return nil
}

// openDestination truncates dst for writing. A read-only dst left by an earlier
// copy of a read-only source is made writable first.
func openDestination(fs afero.Fs, dst string, perm os.FileMode) (afero.File, error) {
	const flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	out, err := fs.OpenFile(dst, flags, perm)
	if err == nil || !os.IsPermission(err) {
		return out, err
	}
	existing, statErr := fs.Stat(dst)
	if statErr != nil || existing.IsDir() || existing.Mode().Perm()&0o200 != 0 {
		return nil, err
	}
	if chErr := fs.Chmod(dst, existing.Mode().Perm()|0o200); chErr != nil {
		return nil, err
	}
	return fs.OpenFile(dst, flags, perm)
}

func listFormat(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
