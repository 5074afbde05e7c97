package completers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/uri"
	"mvdan.cc/sh/v3/interp"
)

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
}

// setupPath creates two PATH directories and returns them joined.
func setupPath(t *testing.T) (string, string, string) {
	t.Helper()
	root := t.TempDir()
	bin1 := filepath.Join(root, "bin1")
	bin2 := filepath.Join(root, "bin2")
	writeFile(t, filepath.Join(bin1, "git"), 0755)
	writeFile(t, filepath.Join(bin1, "gitk"), 0755)
	writeFile(t, filepath.Join(bin1, "gitnotes"), 0644)
	require.NoError(t, os.MkdirAll(filepath.Join(bin1, "gitdir"), 0755))
	writeFile(t, filepath.Join(bin2, "git"), 0755)
	writeFile(t, filepath.Join(bin2, "go"), 0755)
	return bin1 + ":" + bin2 + ":" + filepath.Join(root, "missing"), bin1, bin2
}

func labels(items completion.Items) []string {
	return lo.Map(items, func(c completion.RawCompletion, _ int) string { return c.Label.Label })
}

func TestCommandCompleterExecutables(t *testing.T) {
	path, bin1, bin2 := setupPath(t)
	c := NewCommandCompleter(CommandCompleterConfig{
		Env:  completion.MapEnv{"PATH": path},
		GOOS: "linux",
		Pwd:  func() string { return "/" },
	})

	result, err := c.ProvideCompletions(context.Background(), "gi", 2, false)
	require.NoError(t, err)
	items, ok := result.(completion.Items)
	require.True(t, ok)

	assert.Equal(t, []string{"git", "gitk"}, labels(items), "non-executables and directories are skipped")
	assert.Equal(t, filepath.Join(bin1, "git"), items[0].Detail, "the first PATH entry wins")
	for _, item := range items {
		assert.Equal(t, completion.KindMethod, item.Kind)
		assert.Equal(t, CommandsProviderID, item.Provider)
		assert.Equal(t, 0, item.ReplacementIndex)
		assert.Equal(t, 2, item.ReplacementLength)
	}

	result, err = c.ProvideCompletions(context.Background(), "  go", 4, false)
	require.NoError(t, err)
	items = result.(completion.Items)
	require.Len(t, items, 1)
	assert.Equal(t, filepath.Join(bin2, "go"), items[0].Detail)
	assert.Equal(t, 2, items[0].ReplacementIndex)
}

func TestCommandCompleterWindowsPathExt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tool.exe"), 0644)
	writeFile(t, filepath.Join(dir, "tool.txt"), 0644)
	writeFile(t, filepath.Join(dir, "tool.PS1"), 0644)

	c := NewCommandCompleter(CommandCompleterConfig{
		Env:  completion.MapEnv{"PATH": dir, "PATHEXT": ".EXE;.PS1"},
		GOOS: "windows",
	})
	result, err := c.ProvideCompletions(context.Background(), "to", 2, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tool.exe", "tool.PS1"}, labels(result.(completion.Items)))
}

func TestCommandCompleterAliases(t *testing.T) {
	runner, err := interp.New(interp.Interactive(true))
	require.NoError(t, err)
	runScript(t, runner, "alias gst='git status'\nalias ll='ls -l'")

	c := NewCommandCompleter(CommandCompleterConfig{
		Runner: runner,
		Env:    completion.MapEnv{},
	})
	result, err := c.ProvideCompletions(context.Background(), "gs", 2, false)
	require.NoError(t, err)
	items := result.(completion.Items)
	require.Len(t, items, 1)
	assert.Equal(t, "gst", items[0].Label.Label)
	assert.Equal(t, completion.KindAlias, items[0].Kind)
}

func TestCommandCompleterResourceRequests(t *testing.T) {
	cwd := t.TempDir()
	c := NewCommandCompleter(CommandCompleterConfig{
		Env:  completion.MapEnv{},
		GOOS: "linux",
		Pwd:  func() string { return cwd },
	})

	tests := []struct {
		prompt string
		files  bool
	}{
		{prompt: "cat ", files: true},
		{prompt: "cat READ", files: true},
		{prompt: "cd ", files: false},
		{prompt: "cd sr", files: false},
		{prompt: "./scr", files: true},
		{prompt: "~/bin/", files: true},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			result, err := c.ProvideCompletions(context.Background(), tt.prompt, len(tt.prompt), false)
			require.NoError(t, err)
			withResources, ok := result.(completion.ItemsWithResources)
			require.True(t, ok)
			require.NotNil(t, withResources.ResourceRequest)
			assert.Empty(t, withResources.Items)
			assert.Equal(t, uri.File(cwd), withResources.ResourceRequest.Cwd)
			assert.Equal(t, "/", withResources.ResourceRequest.PathSeparator)
			assert.True(t, withResources.ResourceRequest.FoldersRequested)
			assert.Equal(t, tt.files, withResources.ResourceRequest.FilesRequested)
		})
	}
}

func TestIsPathBasedCommand(t *testing.T) {
	for _, c := range []string{"/bin/ls", "./script", "../x", "~/bin/tool", "bin/tool", `.\run.ps1`, "~"} {
		assert.True(t, IsPathBasedCommand(c), c)
	}
	for _, c := range []string{"", "ls", "git-lfs", "node.exe"} {
		assert.False(t, IsPathBasedCommand(c), c)
	}
}
