package di

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switcherforgames.com/cli/internal/infrastructure/config"
	"switcherforgames.com/cli/internal/interfaces/cli"
)

func testOptions(t *testing.T, extra map[string]string) (Options, string) {
	t.Helper()
	root := t.TempDir()
	environ := map[string]string{
		"HOME":            filepath.Join(root, "user"),
		"USERPROFILE":     filepath.Join(root, "user"),
		"APPDATA":         filepath.Join(root, "user", "AppData", "Roaming"),
		"SWITCHER_HOME":   filepath.Join(root, "switcher"),
		"USER":            "sam",
		"USERNAME":        "sam",
		"XDG_CONFIG_HOME": filepath.Join(root, "user", ".config"),
	}
	for k, v := range extra {
		environ[k] = v
	}
	return Options{Environ: environ, Console: io.Discard}, root
}

func TestNewContainer(t *testing.T) {
	opts, root := testOptions(t, nil)

	c, err := NewContainer(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown() })

	home := filepath.Join(root, "switcher")
	assert.Equal(t, home, c.Paths.Home)
	assert.Equal(t, home, c.Paths.Data, "the data directory defaults to the home directory")
	assert.FileExists(t, filepath.Join(home, config.SettingsFile))

	cc := c.GetCLIContainer()
	require.NotNil(t, cc)
	assert.Empty(t, cc.Plugins.Plugins())
	assert.Empty(t, cc.LoadReport.Loaded)
	assert.NotNil(t, cc.Website)
	assert.NotNil(t, cc.Close)
}

func TestNewContainer_DataDirOverride(t *testing.T) {
	opts, root := testOptions(t, nil)
	data := filepath.Join(root, "data")
	opts.Environ["SWITCHER_DATA_DIR"] = data

	c, err := NewContainer(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown() })

	assert.Equal(t, data, c.Paths.Data)
	assert.Equal(t, filepath.Join(root, "switcher"), c.Settings.Stored().DataDir, "overrides are not persisted")
}

func TestNewContainer_LoadsInstalledPlugins(t *testing.T) {
	opts, root := testOptions(t, nil)
	dir := filepath.Join(root, "switcher", config.PluginsFolder, "war-thunder")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.yaml"), []byte(`uid: war-thunder
game: War Thunder
author: sam
api: 1
features: [graphics]
graphicsConfig: ["config.blk"]
verificationPaths: ["aces"]
`), 0o644))

	c, err := NewContainer(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown() })

	p, err := c.Plugins.Get("war-thunder")
	require.NoError(t, err)
	assert.Equal(t, "War Thunder", p.Descriptor().Game)
	assert.Equal(t, []string{"war-thunder"}, c.CLIContainer.LoadReport.Loaded)
}

func TestNewContainer_InvalidSettings(t *testing.T) {
	opts, root := testOptions(t, nil)
	home := filepath.Join(root, "switcher")
	require.NoError(t, os.MkdirAll(home, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, config.SettingsFile), []byte("version: [\n"), 0o644))

	_, err := NewContainer(opts)
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	opts, _ := testOptions(t, nil)

	cc, err := Factory(opts)(cli.Options{Debug: true})
	require.NoError(t, err)
	require.NotNil(t, cc.Close)
	assert.NoError(t, cc.Close())
	assert.NoError(t, cc.Close(), "closing twice is harmless")
}
