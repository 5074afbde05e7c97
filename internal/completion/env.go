package completion

import "os"

// EnvLookup looks up environment variables.
type EnvLookup interface {
	LookupEnv(name string) (string, bool)
}

// MapEnv is an EnvLookup backed by a map.
type MapEnv map[string]string

func (m MapEnv) LookupEnv(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// EnvLookupFunc adapts a function to EnvLookup.
type EnvLookupFunc func(name string) (string, bool)

func (f EnvLookupFunc) LookupEnv(name string) (string, bool) { return f(name) }

// ProcessEnv reads the environment of the current process.
var ProcessEnv EnvLookup = EnvLookupFunc(os.LookupEnv)

// Capabilities describes what the terminal's shell integration reports.
type Capabilities struct {
	// ShellEnv is the shell's live environment. It is nil when the shell does
	// not report one. Variables it does not define are read from the process
	// environment.
	ShellEnv EnvLookup
}

// lookupEnv resolves name from the shell environment capability first and
// falls back to the process environment when the shell does not define it.
func (c Capabilities) lookupEnv(name string, process EnvLookup) string {
	if c.ShellEnv != nil {
		if v, ok := c.ShellEnv.LookupEnv(name); ok {
			return v
		}
	}
	if process == nil {
		return ""
	}
	v, _ := process.LookupEnv(name)
	return v
}
