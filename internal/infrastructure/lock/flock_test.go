package lockinfra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock(t *testing.T) {
	dir := t.TempDir()
	lock := NewFileLock(dir)

	unlock, err := lock.Lock(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, lock.Path())
	require.NoError(t, unlock())

	unlock, err = lock.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestFileLockContention(t *testing.T) {
	dir := t.TempDir()

	unlock, err := NewFileLock(dir).Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err = NewFileLock(dir).Lock(ctx)
	assert.ErrorIs(t, err, ErrLocked)
}
