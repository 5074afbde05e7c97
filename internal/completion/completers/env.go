// Package completers holds the builtin completion providers: commands and
// aliases, bash completion specs and history suggestions.
package completers

import (
	"reflect"
	"slices"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"mvdan.cc/sh/v3/interp"
)

// RunnerEnv exposes the variables of a shell runner as the shell environment
// of a completion request.
type RunnerEnv struct {
	Runner *interp.Runner
}

var _ completion.EnvLookup = RunnerEnv{}

// LookupEnv prefers variables set while running scripts over the runner's
// initial environment.
func (e RunnerEnv) LookupEnv(name string) (string, bool) {
	if e.Runner == nil {
		return "", false
	}
	if vr, ok := e.Runner.Vars[name]; ok && vr.IsSet() {
		return vr.String(), true
	}
	if e.Runner.Env != nil {
		if vr := e.Runner.Env.Get(name); vr.IsSet() {
			return vr.String(), true
		}
	}
	return "", false
}

// runnerAliases lists the aliases defined in runner, sorted.
func runnerAliases(runner *interp.Runner) []string {
	if runner == nil {
		return nil
	}

	// The alias table is unexported, so read its keys through reflection.
	aliasField := reflect.ValueOf(runner).Elem().FieldByName("alias")
	if !aliasField.IsValid() || aliasField.Kind() != reflect.Map || aliasField.IsNil() {
		return nil
	}

	names := make([]string, 0, aliasField.Len())
	for _, key := range aliasField.MapKeys() {
		names = append(names, key.String())
	}
	slices.Sort(names)
	return names
}
