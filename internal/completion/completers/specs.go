package completers

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// SpecsProviderID is the id SpecCompleter registers under.
const SpecsProviderID = "specs"

// CompletionType represents the type of completion.
type CompletionType string

const (
	// WordListCompletion represents word list based completion (-W option).
	WordListCompletion CompletionType = "W"
	// FunctionCompletion represents function based completion (-F option).
	FunctionCompletion CompletionType = "F"
)

// CompletionSpec represents a completion specification for a command.
type CompletionSpec struct {
	Command string
	Type    CompletionType
	Value   string   // function name or wordlist
	Options []string // additional options like -o dirname
}

// SpecRegistry stores and executes command completion specifications.
// It is safe for concurrent use.
type SpecRegistry struct {
	mu    sync.RWMutex
	specs map[string]CompletionSpec

	// Runner executes -F completion functions. It is set once the runner
	// exists, since the runner's exec handlers need the registry first.
	Runner *interp.Runner
}

// NewSpecRegistry creates a new SpecRegistry.
func NewSpecRegistry() *SpecRegistry {
	return &SpecRegistry{
		specs: make(map[string]CompletionSpec),
	}
}

// AddSpec adds or updates a completion specification.
func (r *SpecRegistry) AddSpec(spec CompletionSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Command] = spec
}

// RemoveSpec removes a completion specification.
func (r *SpecRegistry) RemoveSpec(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specs, command)
}

// GetSpec retrieves a completion specification.
func (r *SpecRegistry) GetSpec(command string) (CompletionSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[command]
	return spec, ok
}

// ListSpecs returns all completion specifications ordered by command.
func (r *SpecRegistry) ListSpecs() []CompletionSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	commands := lo.Keys(r.specs)
	slices.Sort(commands)
	return lo.Map(commands, func(c string, _ int) CompletionSpec { return r.specs[c] })
}

// ExecuteCompletion runs spec for a command line split into words, where the
// last word is the one being completed, and returns the candidates.
func (r *SpecRegistry) ExecuteCompletion(ctx context.Context, spec CompletionSpec, words []string) ([]string, error) {
	current := ""
	if len(words) > 0 {
		current = words[len(words)-1]
	}

	switch spec.Type {
	case WordListCompletion:
		return filterWordList(spec.Value, current), nil

	case FunctionCompletion:
		if r.Runner == nil {
			return nil, fmt.Errorf("no shell to run completion function %s", spec.Value)
		}
		return runCompletionFunction(ctx, r.Runner, spec.Value, words)

	default:
		return nil, fmt.Errorf("unsupported completion type: %s", spec.Type)
	}
}

func filterWordList(wordList, current string) []string {
	return lo.Filter(strings.Fields(wordList), func(w string, _ int) bool {
		return strings.HasPrefix(w, current)
	})
}

// runCompletionFunction calls a bash completion function the way bash does:
// COMP_* variables describe the line, the arguments are the command, the
// current word and the previous word, and COMPREPLY holds the result. It runs
// in a subshell so the runner's own state is left untouched.
func runCompletionFunction(ctx context.Context, runner *interp.Runner, name string, words []string) ([]string, error) {
	if len(words) == 0 {
		words = []string{""}
	}
	line := strings.Join(words, " ")
	cword := len(words) - 1
	prev := ""
	if cword > 0 {
		prev = words[cword-1]
	}

	quoted := make([]string, 0, len(words))
	for _, w := range words {
		q, err := quote(w)
		if err != nil {
			return nil, err
		}
		quoted = append(quoted, q)
	}
	qLine, err := quote(line)
	if err != nil {
		return nil, err
	}
	qName, err := quote(name)
	if err != nil {
		return nil, err
	}
	qPrev, err := quote(prev)
	if err != nil {
		return nil, err
	}

	script := fmt.Sprintf(
		"COMP_LINE=%s\nCOMP_POINT=%d\nCOMP_WORDS=(%s)\nCOMP_CWORD=%d\nCOMPREPLY=()\n%s %s %s %s\n",
		qLine, len(line), strings.Join(quoted, " "), cword,
		qName, quoted[0], quoted[cword], qPrev,
	)

	file, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse completion script: %w", err)
	}

	sub := runner.Subshell()
	if err := sub.Run(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to execute completion function %s: %w", name, err)
	}

	compreply, ok := sub.Vars["COMPREPLY"]
	if !ok {
		return []string{}, nil
	}
	switch compreply.Kind {
	case expand.Indexed:
		return compreply.List, nil
	case expand.String:
		if compreply.Str == "" {
			return []string{}, nil
		}
		return []string{compreply.Str}, nil
	}
	return []string{}, nil
}

func quote(s string) (string, error) {
	if s == "" {
		return "''", nil
	}
	return syntax.Quote(s, syntax.LangBash)
}

// SpecCompleterConfig holds the settings of a SpecCompleter.
type SpecCompleterConfig struct {
	Registry *SpecRegistry
	Logger   *zap.Logger
}

// SpecCompleter completes arguments of commands that have a bash completion
// spec registered with `complete`.
type SpecCompleter struct {
	registry *SpecRegistry
	logger   *zap.Logger
}

// NewSpecCompleter creates a new SpecCompleter.
func NewSpecCompleter(cfg SpecCompleterConfig) *SpecCompleter {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewSpecRegistry()
	}
	return &SpecCompleter{registry: registry, logger: logger}
}

func (c *SpecCompleter) IsBuiltin() bool { return true }

// ShellTypes limits the completer to shells that understand bash specs.
func (c *SpecCompleter) ShellTypes() []completion.ShellType {
	return []completion.ShellType{completion.ShellBash, completion.ShellZsh, completion.ShellGitBash}
}

// ProvideCompletions implements completion.Provider.
func (c *SpecCompleter) ProvideCompletions(ctx context.Context, promptValue string, cursorPosition int, _ bool) (completion.Result, error) {
	cursorPosition = min(max(cursorPosition, 0), len(promptValue))
	words := splitWords(promptValue[:cursorPosition])
	if len(words) < 2 {
		return nil, nil
	}

	spec, ok := c.registry.GetSpec(words[0].text)
	if !ok {
		return nil, nil
	}

	texts := lo.Map(words, func(w word, _ int) string { return w.text })
	suggestions, err := c.registry.ExecuteCompletion(ctx, spec, texts)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("spec completions",
		zap.String("command", spec.Command),
		zap.String("type", string(spec.Type)),
		zap.Int("count", len(suggestions)))

	current := words[len(words)-1]
	return completion.Items(lo.Map(lo.Uniq(suggestions), func(s string, _ int) completion.RawCompletion {
		return completion.RawCompletion{
			Label:             completion.PlainLabel(s),
			Kind:              completion.KindArgument,
			Provider:          SpecsProviderID,
			ReplacementIndex:  current.start,
			ReplacementLength: len(current.text),
		}
	})), nil
}
