package completers

import "github.com/atinylittleshell/gshcomplete/internal/completion"

// BuiltinNamespace owns the providers in this package.
const BuiltinNamespace = "builtin"

// Builtins are the builtin providers of one shell session.
type Builtins struct {
	Commands *CommandCompleter
	Specs    *SpecCompleter
	History  *HistoryCompleter
}

// Register adds every non-nil provider to registry. Path separators trigger
// the command completer; the others run on explicit requests only.
func (b Builtins) Register(registry *completion.Registry) []completion.Disposable {
	var disposables []completion.Disposable
	if b.Commands != nil {
		disposables = append(disposables, registry.Register(BuiltinNamespace, CommandsProviderID, b.Commands, "/", `\`))
	}
	if b.Specs != nil {
		disposables = append(disposables, registry.Register(BuiltinNamespace, SpecsProviderID, b.Specs, "-"))
	}
	if b.History != nil {
		disposables = append(disposables, registry.Register(BuiltinNamespace, HistoryProviderID, b.History))
	}
	return disposables
}
