package plugininfra

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const identifyScript = `package thunder

import "strings"

func Identify(path string) bool {
	return strings.HasSuffix(path, "WT")
}

func Executable(path string) string {
	return "launcher.exe"
}
`

func TestScriptedPluginOverrides(t *testing.T) {
	unixOnly(t)
	fs := afero.NewMemMapFs()
	base := NewCodelessPlugin(parseThunder(t), fs, testEvaluator())

	p, err := NewScriptedPlugin(base, []byte(identifyScript))
	require.NoError(t, err)

	assert.True(t, p.Identify("/games/WT"))
	assert.False(t, p.Identify("/games/War Thunder"))

	exe, err := p.Executable("/games/WT")
	require.NoError(t, err)
	assert.Equal(t, "/games/WT/launcher.exe", exe)
}

func TestScriptedPluginFallsBackWithoutFunctions(t *testing.T) {
	unixOnly(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/games/War Thunder/aces.exe", "bin")
	base := NewCodelessPlugin(parseThunder(t), fs, testEvaluator())

	p, err := NewScriptedPlugin(base, []byte("package thunder\n\nfunc helper() int { return 1 }\n"))
	require.NoError(t, err)
	assert.True(t, p.Identify("/games/War Thunder"))

	exe, err := p.Executable("/games/War Thunder")
	require.NoError(t, err)
	assert.Equal(t, "/games/War Thunder/aces.exe", exe)
}

func TestScriptedPluginRejectsForbiddenImports(t *testing.T) {
	base := NewCodelessPlugin(parseThunder(t), afero.NewMemMapFs(), testEvaluator())
	src := "package thunder\n\nimport \"os/exec\"\n\nvar _ = exec.Command\n"

	_, err := NewScriptedPlugin(base, []byte(src))
	assert.ErrorIs(t, err, ErrForbiddenImport)
}

func TestScriptedPluginRejectsWrongSignature(t *testing.T) {
	base := NewCodelessPlugin(parseThunder(t), afero.NewMemMapFs(), testEvaluator())
	src := "package thunder\n\nfunc Identify(n int) bool { return n > 0 }\n"

	_, err := NewScriptedPlugin(base, []byte(src))
	assert.ErrorIs(t, err, ErrScriptSignature)
}

func TestScriptedPluginRejectsInvalidSource(t *testing.T) {
	base := NewCodelessPlugin(parseThunder(t), afero.NewMemMapFs(), testEvaluator())

	_, err := NewScriptedPlugin(base, []byte("package thunder\n\nfunc Identify(\n"))
	assert.Error(t, err)
}

func TestScriptedPluginRecoversFromPanics(t *testing.T) {
	base := NewCodelessPlugin(parseThunder(t), afero.NewMemMapFs(), testEvaluator())
	src := "package thunder\n\nfunc Identify(path string) bool { panic(\"boom\") }\n"

	p, err := NewScriptedPlugin(base, []byte(src))
	require.NoError(t, err)
	assert.False(t, p.Identify("/games/War Thunder"))
}
