package completion

import (
	"github.com/samber/lo"
)

// shellRules holds the per-shell heuristics applied by the collector and the
// resolver. Shells without an entry use the zero value.
type shellRules struct {
	// fileOverrideKinds are kinds that the shell resolves as files when they
	// replace from the very start of the prompt.
	fileOverrideKinds []Kind
	// unixPathsOnWindows marks POSIX-emulating shells running on Windows whose
	// absolute paths look like /c/Users/...
	unixPathsOnWindows bool
}

var shellRuleTable = map[ShellType]shellRules{
	ShellPowerShell: {fileOverrideKinds: []Kind{KindMethod}},
	ShellGitBash:    {unixPathsOnWindows: true},
}

func rulesFor(shell ShellType) shellRules {
	return shellRuleTable[shell]
}

// markFileOverride flags completions the shell would treat as a file path.
func (r shellRules) markFileOverride(c *RawCompletion) {
	if c.IsFileOverride || c.ReplacementIndex != 0 {
		return
	}
	if lo.Contains(r.fileOverrideKinds, c.Kind) {
		c.IsFileOverride = true
	}
}

// Extension boosts for files at the start of a command line. Windows follows
// pwsh's command precedence (.ps1 > .exe > .bat/.cmd); other platforms favor
// POSIX shell and interpreter scripts.
var extensionScoreTables = map[string]map[string]float64{
	"windows": {
		"ps1":  0.09,
		"exe":  0.08,
		"bat":  0.07,
		"cmd":  0.07,
		"msi":  0.06,
		"com":  0.06,
		"sh":   -0.05,
		"bash": -0.05,
		"zsh":  -0.05,
		"fish": -0.05,
		"csh":  -0.06,
		"ksh":  -0.06,
	},
	"posix": {
		"ps1":  0.05,
		"bat":  -0.05,
		"cmd":  -0.05,
		"exe":  -0.05,
		"sh":   0.05,
		"bash": 0.05,
		"zsh":  0.05,
		"fish": 0.05,
		"csh":  0.04,
		"ksh":  0.04,
		"py":   0.05,
		"pl":   0.05,
	},
}

func extensionScoreTable(goos string) map[string]float64 {
	if goos == "windows" {
		return extensionScoreTables["windows"]
	}
	return extensionScoreTables["posix"]
}
