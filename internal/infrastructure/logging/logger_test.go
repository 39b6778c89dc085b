package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesFileAndConsole(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "switcher.log")

	logger, closeFn, err := New(Options{File: file, FileLevel: "info", Console: &console})
	require.NoError(t, err)

	logger.Named("profiles").Info("saved profile", zap.String("id", "p1"))
	logger.Warn("stale game path")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "saved profile", entry["msg"])
	assert.Equal(t, "profiles", entry["logger"])
	assert.Equal(t, "p1", entry["id"])

	assert.NotContains(t, console.String(), "saved profile")
	assert.Contains(t, console.String(), "stale game path")
}

func TestNewDebugConsole(t *testing.T) {
	var console bytes.Buffer
	logger, closeFn, err := New(Options{Console: &console, Debug: true})
	require.NoError(t, err)

	logger.Debug("scanning roots")
	require.NoError(t, closeFn())
	assert.Contains(t, console.String(), "scanning roots")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(Options{FileLevel: "loud"})
	assert.Error(t, err)
}
