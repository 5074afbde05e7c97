//go:build !windows

package bash

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessGroupExecHandlerExitStatus(t *testing.T) {
	var out bytes.Buffer
	runner, err := NewRunner(RunnerConfig{Environ: []string{"PATH=/bin:/usr/bin"}, Stdout: &out})
	require.NoError(t, err)

	script := "sh -c 'exit 3'; echo \"status=$?\"; sh -c 'echo \"$EXPORTED\"'"
	require.NoError(t, RunBashScriptFromReader(context.Background(), runner, strings.NewReader("export EXPORTED=yes\n"+script), "test"))
	assert.Equal(t, "status=3\nyes\n", out.String())
}

func TestProcessGroupExecHandlerCancel(t *testing.T) {
	runner, err := NewRunner(RunnerConfig{Environ: []string{"PATH=/bin:/usr/bin"}, KillTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_ = RunBashScriptFromReader(ctx, runner, strings.NewReader("sleep 30"), "test")
	assert.Less(t, time.Since(start), 10*time.Second)
}
