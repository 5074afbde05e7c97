package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/atinylittleshell/gshcomplete/internal/bash"
	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/atinylittleshell/gshcomplete/internal/completion/completers"
	"github.com/atinylittleshell/gshcomplete/internal/config"
	"github.com/atinylittleshell/gshcomplete/internal/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

const (
	flagShell   = "shell"
	flagCwd     = "cwd"
	flagCursor  = "cursor"
	flagJSON    = "json"
	flagLSP     = "lsp"
	flagTrigger = "trigger"
	flagNoRc    = "no-rc"
)

var errConflictingFormats = errors.New("--json and --lsp are mutually exclusive")

type completeOptions struct {
	shell   string
	cwd     string
	cursor  int
	json    bool
	lsp     bool
	trigger string
	noRc    bool
}

func newCompleteCmd(a *app) *cobra.Command {
	opts := &completeOptions{}
	cmd := &cobra.Command{
		Use:   "complete [flags] -- <prompt>",
		Short: "Print the ranked completions for a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.json && opts.lsp {
				return errConflictingFormats
			}
			if !cmd.Flags().Changed(flagCursor) {
				opts.cursor = len(args[0])
			}
			return a.runComplete(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.shell, flagShell, string(completion.ShellBash), "Shell the prompt belongs to")
	cmd.Flags().StringVar(&opts.cwd, flagCwd, "", "Working directory of the shell (default: current directory)")
	cmd.Flags().IntVar(&opts.cursor, flagCursor, 0, "Byte offset of the cursor in the prompt (default: end of prompt)")
	cmd.Flags().BoolVar(&opts.json, flagJSON, false, "Print completions as JSON")
	cmd.Flags().BoolVar(&opts.lsp, flagLSP, false, "Print completions as an LSP CompletionList")
	cmd.Flags().StringVar(&opts.trigger, flagTrigger, "", "Character whose typing triggered the request")
	cmd.Flags().BoolVar(&opts.noRc, flagNoRc, false, "Do not source the configured rc files")
	return cmd
}

func (a *app) runComplete(ctx context.Context, opts *completeOptions, prompt string) error {
	cwd, err := resolveCwd(opts.cwd)
	if err != nil {
		return err
	}

	specs := completers.NewSpecRegistry()
	runner, err := bash.NewRunner(bash.RunnerConfig{
		Dir:    cwd,
		Stdout: io.Discard,
		Stderr: io.Discard,
		ExecHandlers: []bash.ExecMiddleware{
			completers.NewCompleteCommandHandler(specs),
			completers.NewCompgenCommandHandler(specs),
		},
		KillTimeout: a.cfg.ProviderTimeout,
	})
	if err != nil {
		return err
	}
	specs.Runner = runner

	if !opts.noRc {
		rcFiles := make([]string, 0, len(a.cfg.RcFiles))
		for _, f := range a.cfg.RcFiles {
			rcFiles = append(rcFiles, config.ExpandHome(f, core.HomeDir()))
		}
		sourced := bash.SourceFiles(ctx, runner, a.logger, rcFiles...)
		a.logger.Debug("rc files sourced", zap.Strings("files", sourced))
	}

	service := completion.NewService(completion.ServiceConfig{
		Configuration:   a.cfg,
		ProviderTimeout: a.cfg.ProviderTimeout,
		Logger:          a.logger,
	})

	builtins := completers.Builtins{
		Commands: completers.NewCommandCompleter(completers.CommandCompleterConfig{
			Runner: runner,
			Pwd:    func() string { return runnerDir(runner, cwd) },
			Env:    completers.RunnerEnv{Runner: runner},
			GOOS:   runtime.GOOS,
			Logger: a.logger,
		}),
		Specs: completers.NewSpecCompleter(completers.SpecCompleterConfig{
			Registry: specs,
			Logger:   a.logger,
		}),
	}

	if a.cfg.EnabledProviders()[completers.HistoryProviderID] {
		store, err := a.openHistory()
		if err != nil {
			a.logger.Warn("history unavailable", zap.Error(err))
		} else {
			defer store.Close()
			builtins.History = completers.NewHistoryCompleter(completers.HistoryCompleterConfig{
				History: store,
				Logger:  a.logger,
			})
		}
	}
	builtins.Register(service.Registry())
	a.logger.Debug("providers registered", zap.Int("count", service.Registry().Len()))

	items, ok := service.Complete(ctx, completion.Request{
		PromptValue:              prompt,
		CursorPosition:           opts.cursor,
		AllowFallbackCompletions: true,
		ShellType:                completion.ShellType(opts.shell),
		Capabilities:             completion.Capabilities{ShellEnv: completers.RunnerEnv{Runner: runner}},
		TriggerCharacter:         opts.trigger,
	})
	if !ok {
		a.logger.Debug("no completions requested", zap.String("prompt", prompt), zap.Int("cursor", opts.cursor))
	}

	switch {
	case opts.json:
		return writeJSON(a.stdout, items)
	case opts.lsp:
		return writeLSP(a.stdout, items, prompt)
	default:
		return writeList(a.stdout, items, isTerminal(a.stdout))
	}
}

func resolveCwd(cwd string) (string, error) {
	if cwd == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", err
	}
	stat, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// runnerDir is the working directory after the rc files ran, which may have
// changed it.
func runnerDir(runner *interp.Runner, fallback string) string {
	if runner.Dir != "" {
		return runner.Dir
	}
	return fallback
}
