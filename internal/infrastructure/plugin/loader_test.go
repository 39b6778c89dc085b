package plugininfra

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
)

func TestFileSystemLoaderCodeless(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/plugins/war-thunder/plugin.yml", thunderYAML)

	p, err := NewFileSystemLoader(fs, testEvaluator()).LoadDir("/plugins/war-thunder")
	require.NoError(t, err)
	assert.IsType(t, &CodelessPlugin{}, p)
	assert.Equal(t, "war-thunder", p.Descriptor().UID)
	assert.Equal(t, "/plugins/war-thunder", p.Descriptor().Dir)
}

func TestFileSystemLoaderScripted(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/plugins/war-thunder/plugin.yaml", thunderYAML)
	writeFile(t, fs, "/plugins/war-thunder/plugin.go", identifyScript)

	p, err := NewFileSystemLoader(fs, testEvaluator()).LoadDir("/plugins/war-thunder")
	require.NoError(t, err)
	assert.IsType(t, &ScriptedPlugin{}, p)
}

func TestFileSystemLoaderErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := NewFileSystemLoader(fs, testEvaluator())

	require.NoError(t, fs.MkdirAll("/plugins/empty", 0o755))
	_, err := loader.LoadDir("/plugins/empty")
	assert.ErrorIs(t, err, plugindomain.ErrInvalidDescriptor)

	writeFile(t, fs, "/plugins/bad/plugin.yaml", "uid: Bad UID\n")
	_, err = loader.LoadDir("/plugins/bad")
	assert.ErrorIs(t, err, plugindomain.ErrInvalidDescriptor)

	writeFile(t, fs, "/plugins/evil/plugin.yaml", thunderYAML)
	writeFile(t, fs, "/plugins/evil/plugin.go", "package evil\n\nimport \"net/http\"\n\nvar _ = http.Get\n")
	_, err = loader.LoadDir("/plugins/evil")
	assert.ErrorIs(t, err, ErrForbiddenImport)
}
