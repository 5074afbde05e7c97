package completers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

func TestRunnerEnv(t *testing.T) {
	runner, err := interp.New(interp.Env(expand.ListEnviron("HOME=/home/me", "CDPATH=/src")))
	require.NoError(t, err)

	env := RunnerEnv{Runner: runner}
	home, ok := env.LookupEnv("HOME")
	assert.True(t, ok)
	assert.Equal(t, "/home/me", home)

	runScript(t, runner, "CDPATH=/work; PROJECT=gsh")

	cdPath, ok := env.LookupEnv("CDPATH")
	assert.True(t, ok)
	assert.Equal(t, "/work", cdPath, "variables set by scripts win")

	project, ok := env.LookupEnv("PROJECT")
	assert.True(t, ok)
	assert.Equal(t, "gsh", project)

	_, ok = env.LookupEnv("MISSING")
	assert.False(t, ok)

	_, ok = RunnerEnv{}.LookupEnv("HOME")
	assert.False(t, ok)
}

func TestRunnerAliases(t *testing.T) {
	runner, err := interp.New(interp.Interactive(true))
	require.NoError(t, err)
	runScript(t, runner, "alias ll='ls -l'\nalias gst='git status'")

	assert.Equal(t, []string{"gst", "ll"}, runnerAliases(runner))
	assert.Nil(t, runnerAliases(nil))
}
