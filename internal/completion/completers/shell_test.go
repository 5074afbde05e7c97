package completers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// runScript parses and runs script in runner.
func runScript(t *testing.T, runner *interp.Runner, script string) {
	t.Helper()
	file, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), file))
}
