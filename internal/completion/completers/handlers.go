package completers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"mvdan.cc/sh/v3/interp"
)

// ExecMiddleware wraps an ExecHandlerFunc to intercept commands.
type ExecMiddleware = func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc

// NewCompleteCommandHandler creates a new ExecHandler for the complete command.
func NewCompleteCommandHandler(specRegistry *SpecRegistry) ExecMiddleware {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "complete" {
				return next(ctx, args)
			}
			return handleCompleteCommand(ctx, specRegistry, args[1:])
		}
	}
}

// NewCompgenCommandHandler creates a new ExecHandler for the compgen command.
func NewCompgenCommandHandler(specRegistry *SpecRegistry) ExecMiddleware {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "compgen" {
				return next(ctx, args)
			}
			return handleCompgenCommand(ctx, specRegistry, args[1:])
		}
	}
}

// stdout is the standard output of the command being handled.
func stdout(ctx context.Context) io.Writer {
	if hc := interp.HandlerCtx(ctx); hc.Stdout != nil {
		return hc.Stdout
	}
	return io.Discard
}

func handleCompleteCommand(ctx context.Context, registry *SpecRegistry, args []string) error {
	if len(args) == 0 {
		return printCompletionSpecs(registry, "", stdout(ctx))
	}

	var (
		printMode  bool
		removeMode bool
		wordList   string
		function   string
		command    string
		options    []string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-p":
			printMode = true
		case "-r":
			removeMode = true
		case "-W", "-F", "-o":
			if i+1 >= len(args) {
				return fmt.Errorf("complete: option %s requires an argument", arg)
			}
			i++
			switch arg {
			case "-W":
				wordList = args[i]
			case "-F":
				function = args[i]
			default:
				options = append(options, args[i])
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return fmt.Errorf("complete: unknown option: %s", arg)
			}
			command = arg
		}
	}

	if command == "" && !printMode {
		return fmt.Errorf("complete: no command specified")
	}

	switch {
	case printMode:
		return printCompletionSpecs(registry, command, stdout(ctx))
	case removeMode:
		registry.RemoveSpec(command)
		return nil
	case wordList != "":
		registry.AddSpec(CompletionSpec{Command: command, Type: WordListCompletion, Value: wordList, Options: options})
		return nil
	case function != "":
		registry.AddSpec(CompletionSpec{Command: command, Type: FunctionCompletion, Value: function, Options: options})
		return nil
	}
	return fmt.Errorf("complete: invalid complete command usage")
}

func printCompletionSpecs(registry *SpecRegistry, command string, out io.Writer) error {
	if command != "" {
		if spec, ok := registry.GetSpec(command); ok {
			printCompletionSpec(spec, out)
		}
		return nil
	}

	for _, spec := range registry.ListSpecs() {
		printCompletionSpec(spec, out)
	}
	return nil
}

func printCompletionSpec(spec CompletionSpec, out io.Writer) {
	var opts strings.Builder
	for _, o := range spec.Options {
		fmt.Fprintf(&opts, "-o %s ", o)
	}
	switch spec.Type {
	case WordListCompletion:
		fmt.Fprintf(out, "complete %s-W %q %s\n", opts.String(), spec.Value, spec.Command)
	case FunctionCompletion:
		fmt.Fprintf(out, "complete %s-F %s %s\n", opts.String(), spec.Value, spec.Command)
	}
}

func handleCompgenCommand(ctx context.Context, registry *SpecRegistry, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("compgen: no options specified")
	}

	var (
		wordList     string
		functionName string
		word         string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-W", "-F":
			if i+1 >= len(args) {
				return fmt.Errorf("compgen: option %s requires an argument", arg)
			}
			i++
			if arg == "-W" {
				wordList = args[i]
			} else {
				functionName = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return fmt.Errorf("compgen: unknown option: %s", arg)
			}
			word = arg
		}
	}

	var (
		candidates []string
		err        error
	)
	switch {
	case wordList != "":
		candidates = filterWordList(wordList, word)
	case functionName != "":
		candidates, err = registry.ExecuteCompletion(ctx, CompletionSpec{Type: FunctionCompletion, Value: functionName}, []string{word})
		if err != nil {
			return err
		}
		candidates = lo.Filter(candidates, func(c string, _ int) bool { return strings.HasPrefix(c, word) })
	default:
		return fmt.Errorf("compgen: no completion type specified")
	}

	out := stdout(ctx)
	for _, c := range candidates {
		fmt.Fprintln(out, c)
	}
	return nil
}
