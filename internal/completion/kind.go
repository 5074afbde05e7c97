// Package completion implements the terminal shell-completion engine.
// It aggregates suggestions from registered providers, expands filesystem
// requests into path completions and ranks the merged candidate list.
package completion

// Kind identifies what a completion represents.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
	KindMethod
	KindAlias
	KindArgument
	KindOption
	KindOptionValue
	KindFlag
	// KindInlineSuggestion is the shell's own ghost-text suggestion.
	KindInlineSuggestion
	// KindInlineSuggestionAlwaysOnTop is a ghost-text suggestion that outranks
	// every other item, including exact matches.
	KindInlineSuggestionAlwaysOnTop
)

var kindNames = map[Kind]string{
	KindFile:                        "file",
	KindFolder:                      "folder",
	KindMethod:                      "method",
	KindAlias:                       "alias",
	KindArgument:                    "argument",
	KindOption:                      "option",
	KindOptionValue:                 "optionValue",
	KindFlag:                        "flag",
	KindInlineSuggestion:            "inlineSuggestion",
	KindInlineSuggestionAlwaysOnTop: "inlineSuggestionAlwaysOnTop",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsResource reports whether the kind is backed by a filesystem entry.
func (k Kind) IsResource() bool {
	return k == KindFile || k == KindFolder
}

// ShellType names the shell a request is made for.
type ShellType string

const (
	ShellUnknown    ShellType = ""
	ShellBash       ShellType = "bash"
	ShellZsh        ShellType = "zsh"
	ShellFish       ShellType = "fish"
	ShellPowerShell ShellType = "pwsh"
	ShellGitBash    ShellType = "gitbash"
	ShellCmd        ShellType = "cmd"
	ShellNu         ShellType = "nu"
	ShellPython     ShellType = "python"
	ShellJulia      ShellType = "julia"
)

// CDPathMode controls how $CDPATH entries are offered for `cd`.
type CDPathMode string

const (
	CDPathOff      CDPathMode = "off"
	CDPathRelative CDPathMode = "relative"
	CDPathAbsolute CDPathMode = "absolute"
)
