// Package bash sets up the mvdan/sh runner that completion providers read
// aliases, functions and variables from.
package bash

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ExecMiddleware is a function that wraps an ExecHandlerFunc to provide
// additional functionality (e.g., command interception).
type ExecMiddleware = func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc

// RunnerConfig holds the settings of a completion shell.
type RunnerConfig struct {
	// Dir is the working directory. Defaults to the process's.
	Dir string

	// Environ is the initial environment in KEY=value form. Defaults to
	// the process environment.
	Environ []string

	// Stdout and Stderr receive script output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// ExecHandlers intercept commands before they reach the default
	// handler, e.g. `complete` and `compgen`.
	ExecHandlers []ExecMiddleware

	// KillTimeout is how long an external command gets after an interrupt.
	KillTimeout time.Duration
}

// NewRunner creates an interactive runner so that aliases defined by sourced
// scripts are kept.
func NewRunner(cfg RunnerConfig) (*interp.Runner, error) {
	environ := cfg.Environ
	if environ == nil {
		environ = os.Environ()
	}

	handlers := append([]ExecMiddleware{}, cfg.ExecHandlers...)
	handlers = append(handlers, func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return NewProcessGroupExecHandler(cfg.KillTimeout)
	})

	opts := []interp.RunnerOption{
		interp.Interactive(true),
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(nil, cfg.Stdout, cfg.Stderr),
		interp.ExecHandlers(handlers...),
	}
	if cfg.Dir != "" {
		opts = append(opts, interp.Dir(cfg.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bash runner: %w", err)
	}
	return runner, nil
}

// RunBashScriptFromReader parses and runs a bash script from an io.Reader.
// The script is executed in the provided runner (not a subshell).
func RunBashScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

// RunBashScriptFromFile parses and runs a bash script from a file.
// The script is executed in the provided runner (not a subshell).
func RunBashScriptFromFile(ctx context.Context, runner *interp.Runner, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return RunBashScriptFromReader(ctx, runner, f, filePath)
}

// SourceFiles runs each existing, non-empty file in order. A failing file is
// logged and does not stop the others. It returns the files that ran cleanly.
func SourceFiles(ctx context.Context, runner *interp.Runner, logger *zap.Logger, paths ...string) []string {
	if logger == nil {
		logger = zap.NewNop()
	}
	var sourced []string
	for _, path := range paths {
		stat, err := os.Stat(path)
		if err != nil || stat.IsDir() || stat.Size() == 0 {
			continue
		}
		if err := RunBashScriptFromFile(ctx, runner, path); err != nil {
			logger.Warn("failed to source rc file", zap.String("path", path), zap.Error(err))
			continue
		}
		sourced = append(sourced, path)
	}
	return sourced
}
