package plugininfra

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	"switcherforgames.com/cli/internal/core/domain/platform"
	"switcherforgames.com/cli/internal/core/mirror"
	"switcherforgames.com/cli/internal/core/pathvar"
)

const thunderYAML = `uid: war-thunder
game: War Thunder
author: sam
api: 1
steamID: 236390
features: [graphics, keymap]
graphicsConfig: config.blk
keymapConfig:
  linux: "{xdg_config}/WarThunder/controls"
  windows: "{documents}/My Games/WarThunder/Saves"
verificationPaths:
  - aces.exe
gameDirectory: War Thunder
`

func unixOnly(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixtures use unix paths")
	}
}

func testEvaluator() *pathvar.Evaluator {
	return pathvar.NewEvaluator(platform.Linux, pathvar.MapEnvironment{
		Home: "/home/sam",
		Vars: map[string]string{"USER": "sam"},
	})
}

func writeFile(t testing.TB, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func parseThunder(t testing.TB) *plugindomain.Descriptor {
	t.Helper()
	desc, err := plugindomain.ParseDescriptor([]byte(thunderYAML))
	require.NoError(t, err)
	return desc
}

// memFetcher copies sources out of the same in-memory filesystem
type memFetcher struct {
	fs      afero.Fs
	fetched []string
	err     error
}

func (f *memFetcher) Fetch(ctx context.Context, src, dst string) error {
	f.fetched = append(f.fetched, src)
	if f.err != nil {
		return f.err
	}
	return mirror.CopyTree(f.fs, src, dst)
}

// syncFetcher is a memFetcher safe for concurrent installs
type syncFetcher struct {
	mu sync.Mutex
	fs afero.Fs
}

func (f *syncFetcher) Fetch(ctx context.Context, src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return mirror.CopyTree(f.fs, src, dst)
}
