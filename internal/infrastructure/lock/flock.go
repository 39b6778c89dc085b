package lockinfra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFile is the name of the lock file inside the data directory
const LockFile = ".switcher.lock"

// ErrLocked is returned when another process holds the lock until ctx ends
var ErrLocked = errors.New("data directory is locked by another switcher process")

const retryDelay = 100 * time.Millisecond

// FileLock is an inter-process lock on a file in the data directory
type FileLock struct {
	path string
}

// NewFileLock creates a lock for the data directory dir
func NewFileLock(dir string) *FileLock {
	return &FileLock{path: filepath.Join(dir, LockFile)}
}

// Path returns the lock file path
func (l *FileLock) Path() string {
	return l.path
}

// Lock blocks until the lock is acquired or ctx is done
func (l *FileLock) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fl := flock.New(l.path)
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrLocked, ctx.Err())
		}
		return nil, fmt.Errorf("failed to lock %s: %w", l.path, err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return fl.Unlock, nil
}
