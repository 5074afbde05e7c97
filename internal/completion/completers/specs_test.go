package completers

import (
	"context"
	"testing"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
)

func TestSpecRegistry(t *testing.T) {
	r := NewSpecRegistry()
	r.AddSpec(CompletionSpec{Command: "git", Type: WordListCompletion, Value: "add commit"})
	r.AddSpec(CompletionSpec{Command: "docker", Type: WordListCompletion, Value: "run build"})
	r.AddSpec(CompletionSpec{Command: "git", Type: WordListCompletion, Value: "add commit push"})

	spec, ok := r.GetSpec("git")
	require.True(t, ok)
	assert.Equal(t, "add commit push", spec.Value, "later specs replace earlier ones")

	commands := lo.Map(r.ListSpecs(), func(s CompletionSpec, _ int) string { return s.Command })
	assert.Equal(t, []string{"docker", "git"}, commands)

	r.RemoveSpec("git")
	_, ok = r.GetSpec("git")
	assert.False(t, ok)
}

func TestExecuteCompletionWordList(t *testing.T) {
	r := NewSpecRegistry()
	spec := CompletionSpec{Command: "git", Type: WordListCompletion, Value: "add commit checkout push"}

	got, err := r.ExecuteCompletion(context.Background(), spec, []string{"git", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"commit", "checkout"}, got)

	got, err = r.ExecuteCompletion(context.Background(), spec, []string{"git", ""})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	_, err = r.ExecuteCompletion(context.Background(), CompletionSpec{Type: "X"}, nil)
	assert.Error(t, err)
}

func newSpecRunner(t *testing.T, r *SpecRegistry, script string) *interp.Runner {
	t.Helper()
	runner, err := interp.New(
		interp.StdIO(nil, nil, nil),
		interp.ExecHandlers(NewCompleteCommandHandler(r), NewCompgenCommandHandler(r)),
	)
	require.NoError(t, err)
	r.Runner = runner
	runScript(t, runner, script)
	return runner
}

func TestExecuteCompletionFunction(t *testing.T) {
	r := NewSpecRegistry()
	runner := newSpecRunner(t, r, `
_svc() { COMPREPLY=(start stop "$2-x" "$3"); }
_words() { COMPREPLY=("$COMP_CWORD" "${COMP_WORDS[0]}" "$COMP_LINE"); }
_fail() { return 3; }
`)

	got, err := r.ExecuteCompletion(context.Background(), CompletionSpec{Type: FunctionCompletion, Value: "_svc"}, []string{"svc", "st"})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "stop", "st-x", "svc"}, got)

	got, err = r.ExecuteCompletion(context.Background(), CompletionSpec{Type: FunctionCompletion, Value: "_words"}, []string{"docker", "run", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "docker", "docker run "}, got)

	_, err = r.ExecuteCompletion(context.Background(), CompletionSpec{Type: FunctionCompletion, Value: "_fail"}, []string{"x", ""})
	assert.Error(t, err)

	assert.NotContains(t, runner.Vars, "COMPREPLY", "functions run in a subshell")
}

func TestExecuteCompletionFunctionWithoutRunner(t *testing.T) {
	r := NewSpecRegistry()
	_, err := r.ExecuteCompletion(context.Background(), CompletionSpec{Type: FunctionCompletion, Value: "_f"}, []string{"x"})
	assert.Error(t, err)
}

func TestSpecCompleter(t *testing.T) {
	r := NewSpecRegistry()
	newSpecRunner(t, r, `
complete -W "commit checkout push" git
_kube() { COMPREPLY=(get apply get); }
complete -F _kube kubectl
`)
	c := NewSpecCompleter(SpecCompleterConfig{Registry: r})

	t.Run("word list", func(t *testing.T) {
		result, err := c.ProvideCompletions(context.Background(), "git co", 6, false)
		require.NoError(t, err)
		items := result.(completion.Items)
		assert.Equal(t, []string{"commit"}, labels(items))
		assert.Equal(t, completion.KindArgument, items[0].Kind)
		assert.Equal(t, SpecsProviderID, items[0].Provider)
		assert.Equal(t, 4, items[0].ReplacementIndex)
		assert.Equal(t, 2, items[0].ReplacementLength)
	})

	t.Run("function results are deduplicated", func(t *testing.T) {
		result, err := c.ProvideCompletions(context.Background(), "kubectl ", 8, false)
		require.NoError(t, err)
		items := result.(completion.Items)
		assert.Equal(t, []string{"get", "apply"}, labels(items))
		assert.Equal(t, 8, items[0].ReplacementIndex)
		assert.Zero(t, items[0].ReplacementLength)
	})

	t.Run("command word", func(t *testing.T) {
		result, err := c.ProvideCompletions(context.Background(), "gi", 2, false)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("no spec", func(t *testing.T) {
		result, err := c.ProvideCompletions(context.Background(), "ls -", 4, false)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	assert.Equal(t, []completion.ShellType{completion.ShellBash, completion.ShellZsh, completion.ShellGitBash}, c.ShellTypes())
	assert.True(t, c.IsBuiltin())
}
