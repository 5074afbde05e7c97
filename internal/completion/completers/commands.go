package completers

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/samber/lo"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

// CommandsProviderID is the id CommandCompleter registers under.
const CommandsProviderID = "commands"

// osReadDir and osStat are variables that can be overridden for testing.
var (
	osReadDir = os.ReadDir
	osStat    = os.Stat
)

// CommandCompleterConfig holds the settings of a CommandCompleter.
type CommandCompleterConfig struct {
	// Runner supplies aliases. Optional.
	Runner *interp.Runner

	// Pwd returns the directory relative paths are resolved against.
	Pwd func() string

	// Env supplies PATH (and PATHEXT on Windows). Defaults to the runner's
	// environment, or the process environment without a runner.
	Env completion.EnvLookup

	// GOOS selects executable detection. Defaults to runtime.GOOS.
	GOOS string

	Logger *zap.Logger
}

// CommandCompleter completes the command word from $PATH and shell aliases,
// and requests files and folders for paths and arguments.
type CommandCompleter struct {
	runner *interp.Runner
	pwd    func() string
	env    completion.EnvLookup
	goos   string
	logger *zap.Logger
}

// NewCommandCompleter creates a new CommandCompleter.
func NewCommandCompleter(cfg CommandCompleterConfig) *CommandCompleter {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	env := cfg.Env
	if env == nil {
		if cfg.Runner != nil {
			env = RunnerEnv{Runner: cfg.Runner}
		} else {
			env = completion.ProcessEnv
		}
	}
	pwd := cfg.Pwd
	if pwd == nil {
		pwd = func() string {
			dir, _ := os.Getwd()
			return dir
		}
	}
	goos := cfg.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	return &CommandCompleter{
		runner: cfg.Runner,
		pwd:    pwd,
		env:    env,
		goos:   goos,
		logger: logger,
	}
}

func (c *CommandCompleter) IsBuiltin() bool { return true }

// ProvideCompletions implements completion.Provider.
func (c *CommandCompleter) ProvideCompletions(ctx context.Context, promptValue string, cursorPosition int, _ bool) (completion.Result, error) {
	cursorPosition = min(max(cursorPosition, 0), len(promptValue))
	words := splitWords(promptValue[:cursorPosition])
	current := words[len(words)-1]

	if len(words) > 1 || IsPathBasedCommand(current.text) {
		return completion.ItemsWithResources{
			ResourceRequest: c.resourceRequest(words[0].text != "cd" || len(words) == 1),
		}, nil
	}

	items := c.commandItems(ctx, current)
	c.logger.Debug("command completions",
		zap.String("prefix", current.text),
		zap.Int("count", len(items)))
	return items, nil
}

func (c *CommandCompleter) resourceRequest(filesRequested bool) *completion.ResourceRequestConfig {
	return &completion.ResourceRequestConfig{
		Cwd:              uri.File(c.pwd()),
		PathSeparator:    c.pathSeparator(),
		FoldersRequested: true,
		FilesRequested:   filesRequested,
	}
}

func (c *CommandCompleter) pathSeparator() string {
	if c.goos == "windows" {
		return `\`
	}
	return "/"
}

func (c *CommandCompleter) commandItems(ctx context.Context, current word) completion.Items {
	item := func(label string, kind completion.Kind, detail string) completion.RawCompletion {
		return completion.RawCompletion{
			Label:             completion.PlainLabel(label),
			Kind:              kind,
			Detail:            detail,
			Provider:          CommandsProviderID,
			ReplacementIndex:  current.start,
			ReplacementLength: len(current.text),
		}
	}

	var items completion.Items
	for _, alias := range runnerAliases(c.runner) {
		if strings.HasPrefix(alias, current.text) {
			items = append(items, item(alias, completion.KindAlias, "alias"))
		}
	}

	for _, exe := range c.executables(ctx, current.text) {
		items = append(items, item(exe.name, completion.KindMethod, exe.path))
	}
	return items
}

type executable struct {
	name string
	path string
}

// executables lists the commands on PATH whose names start with prefix. A name
// found in several PATH directories resolves to the first one.
func (c *CommandCompleter) executables(ctx context.Context, prefix string) []executable {
	pathEnv, _ := c.env.LookupEnv("PATH")
	if pathEnv == "" {
		return nil
	}

	listSep := ":"
	if c.goos == "windows" {
		listSep = ";"
	}

	var found []executable
	for _, dir := range lo.Uniq(lo.Compact(strings.Split(pathEnv, listSep))) {
		if ctx.Err() != nil {
			break
		}
		entries, err := osReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, prefix) {
				continue
			}
			path := filepath.Join(dir, name)
			if !c.isExecutable(path) {
				continue
			}
			found = append(found, executable{name: name, path: path})
		}
	}
	return lo.UniqBy(found, func(e executable) string { return e.name })
}

func (c *CommandCompleter) isExecutable(path string) bool {
	info, err := osStat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if c.goos == "windows" {
		pathExt, _ := c.env.LookupEnv("PATHEXT")
		if pathExt == "" {
			pathExt = ".COM;.EXE;.BAT;.CMD"
		}
		ext := filepath.Ext(path)
		return ext != "" && lo.ContainsBy(strings.Split(pathExt, ";"), func(e string) bool {
			return strings.EqualFold(e, ext)
		})
	}
	return info.Mode()&0111 != 0
}

// IsPathBasedCommand determines if a command looks like a path rather than a simple command name.
func IsPathBasedCommand(command string) bool {
	return strings.HasPrefix(command, "~") ||
		strings.ContainsAny(command, `/\`)
}
