package completion

import (
	"context"

	"go.lsp.dev/uri"
)

// Label is a completion label. Description is optional; a label with a
// description is rendered as a structured label.
type Label struct {
	Label       string
	Description string
}

// PlainLabel returns a label without a description.
func PlainLabel(text string) Label {
	return Label{Label: text}
}

// RawCompletion is a single completion as returned by a provider, before any
// ranking keys are derived from it.
type RawCompletion struct {
	Label         Label
	Kind          Kind
	Detail        string
	Documentation string

	// ReplacementIndex and ReplacementLength address the text before the
	// cursor that applying the completion replaces.
	ReplacementIndex  int
	ReplacementLength int

	// Provider is the id of the provider that produced the completion.
	Provider string

	// IsFileOverride marks completions the shell resolves as files even though
	// the provider reported another kind.
	IsFileOverride bool
}

// ResourceRequestConfig asks the engine to add filesystem completions on a
// provider's behalf.
type ResourceRequestConfig struct {
	Cwd              uri.URI
	PathSeparator    string
	FoldersRequested bool
	FilesRequested   bool
	// FileExtensions restricts file completions when non-empty. Extensions are
	// given without the leading dot.
	FileExtensions []string
}

// Result is what a provider returns for one request. It is either Items or
// ItemsWithResources; a nil Result means the provider had nothing to say.
type Result interface {
	isResult()
}

// Items is a bare list of completions.
type Items []RawCompletion

// ItemsWithResources carries completions plus an optional filesystem request.
type ItemsWithResources struct {
	Items           []RawCompletion
	ResourceRequest *ResourceRequestConfig
}

func (Items) isResult()              {}
func (ItemsWithResources) isResult() {}

// Provider is a source of completions for a prompt.
//
// Implementations are called concurrently with other providers and should
// honor ctx cancellation; the engine discards results that arrive too late.
type Provider interface {
	ProvideCompletions(ctx context.Context, promptValue string, cursorPosition int, allowFallback bool) (Result, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, promptValue string, cursorPosition int, allowFallback bool) (Result, error)

func (f ProviderFunc) ProvideCompletions(ctx context.Context, promptValue string, cursorPosition int, allowFallback bool) (Result, error) {
	return f(ctx, promptValue, cursorPosition, allowFallback)
}

// ShellTypeRestricted is implemented by providers that only serve some shells.
type ShellTypeRestricted interface {
	ShellTypes() []ShellType
}

// BuiltinProvider is implemented by providers that ship with the engine.
// Builtin providers survive SkipExtensionCompletions and get their id stamped
// on items that do not name a provider.
type BuiltinProvider interface {
	IsBuiltin() bool
}
