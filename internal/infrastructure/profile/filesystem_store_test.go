package profileinfra

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	profiledomain "switcherforgames.com/cli/internal/core/domain/profile"
)

func newProfile(t *testing.T, name string, at time.Time) *profiledomain.Profile {
	t.Helper()
	p, err := profiledomain.NewProfile("war-thunder", name, plugindomain.NewFeatureSet(plugindomain.FeatureGraphics), at)
	require.NoError(t, err)
	return p
}

func TestFileSystemStoreWriteGetList(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewFileSystemStore(fs, "/data/profiles", zap.NewNop())

	older := newProfile(t, "Low", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := newProfile(t, "High", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Write(ctx, older))
	require.NoError(t, store.Write(ctx, newer))

	got, err := store.Get(ctx, "war-thunder", older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.Name, got.Name)
	assert.True(t, older.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, older.Features, got.Features)

	require.NoError(t, fs.MkdirAll("/data/profiles/war-thunder/broken", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/data/profiles/war-thunder/broken/profile.yaml", []byte("uuid: nope\n"), 0o644))

	list, err := store.List(ctx, "war-thunder")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "High", list[0].Name)
	assert.Equal(t, "Low", list[1].Name)

	none, err := store.List(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileSystemStoreRecordFormat(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewFileSystemStore(fs, "/data/profiles", zap.NewNop())

	p := newProfile(t, "", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, store.Write(ctx, p))

	data, err := afero.ReadFile(fs, filepath.Join(store.Dir("war-thunder", p.ID), profiledomain.RecordFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "uuid: "+p.ID)
	assert.Contains(t, string(data), "name: New profile")
	assert.Contains(t, string(data), "- graphics")
	assert.Contains(t, string(data), "time: 2024-01-02T03:04:05Z")
}

func TestFileSystemStoreGetMissing(t *testing.T) {
	store := NewFileSystemStore(afero.NewMemMapFs(), "/data/profiles", zap.NewNop())

	for _, id := range []string{"0b0c8a6e-7d5b-4b8f-9df0-6f2f1e0c1a11", "", "..", "a/b"} {
		_, err := store.Get(context.Background(), "war-thunder", id)
		assert.ErrorIs(t, err, profiledomain.ErrNotFound, id)
	}
}

func TestFileSystemStoreDeleteAndSize(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewFileSystemStore(fs, "/data/profiles", zap.NewNop())

	p := newProfile(t, "Keep", time.Now())
	require.NoError(t, store.Write(ctx, p))
	dir := store.Dir(p.Plugin, p.ID)
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "graphics"), 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "graphics", "config.blk"), make([]byte, 1000), 0o644))

	size, err := store.Size(ctx, p.Plugin, p.ID)
	require.NoError(t, err)
	assert.Greater(t, size, int64(1000))

	require.NoError(t, store.Delete(ctx, p.Plugin, p.ID))
	exists, err := afero.DirExists(fs, dir)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.Delete(ctx, p.Plugin, p.ID), profiledomain.ErrNotFound)
}
