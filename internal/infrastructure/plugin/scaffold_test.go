package plugininfra

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	"switcherforgames.com/cli/internal/core/domain/platform"
)

func TestScaffold(t *testing.T) {
	unixOnly(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/games/Rocket League/Binaries/Win64/RocketLeague.exe", "bin")

	out, err := Scaffold(fs, "/games/Rocket League", ScaffoldOptions{
		Author:   "sam",
		Features: plugindomain.NewFeatureSet(plugindomain.FeatureKeymap, plugindomain.FeatureGraphics),
		Platform: platform.Windows,
	})
	require.NoError(t, err)

	desc, err := plugindomain.ParseDescriptor(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, "rocket-league", desc.UID)
	assert.Equal(t, "Rocket League", desc.Game)
	assert.Equal(t, "sam", desc.Author)
	assert.Equal(t, plugindomain.APILevel, desc.API)
	assert.Equal(t, []string{"graphics", "keymap"}, desc.Features.Strings())
	assert.Equal(t, []string{"{documents}/Rocket League"}, desc.KeymapConfig.For(platform.Windows))
	assert.Equal(t, []string{"Binaries/Win64/RocketLeague.exe"}, desc.Executable.For(platform.Windows))
	assert.Empty(t, desc.Executable.For(platform.Linux))
}

func TestScaffoldDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/games/Empty Game", 0o755))

	out, err := Scaffold(fs, "/games/Empty Game", ScaffoldOptions{Platform: platform.Linux})
	require.NoError(t, err)

	desc, err := plugindomain.ParseDescriptor(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, []string{"graphics"}, desc.Features.Strings())
	assert.True(t, desc.Executable.IsZero())

	_, err = Scaffold(fs, "/games/missing", ScaffoldOptions{Platform: platform.Linux})
	assert.Error(t, err)
}

func TestScaffoldUID(t *testing.T) {
	tests := map[string]string{
		"War Thunder":          "war-thunder",
		"Tom Clancy's The Div": "tom-clancy-s-the-div",
		"S.T.A.L.K.E.R. 2":     "s.t.a.l.k.e.r.-2",
		"Half-Life: Alyx":      "half-life-alyx",
	}
	for in, want := range tests {
		got, err := ScaffoldUID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ScaffoldUID("???")
	assert.Error(t, err)
}
