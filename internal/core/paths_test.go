package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsUnderDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv(dataDirEnv, dir)
	ResetPaths()
	t.Cleanup(ResetPaths)

	assert.Equal(t, dir, DataDir())
	assert.Equal(t, filepath.Join(dir, "history.db"), HistoryFile())
	assert.Equal(t, filepath.Join(dir, "gshcomplete.log"), LogFile())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFile())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "data directory is created on first use")
}

func TestResetPathsRereadsEnvironment(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	t.Cleanup(ResetPaths)

	t.Setenv(dataDirEnv, first)
	ResetPaths()
	assert.Equal(t, first, DataDir())

	t.Setenv(dataDirEnv, second)
	assert.Equal(t, first, DataDir(), "paths are cached")
	ResetPaths()
	assert.Equal(t, second, DataDir())
}
