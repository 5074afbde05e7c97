package completion

import (
	"regexp"
	"runtime"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// LanguageServerProviderMarker appears in the id of providers backed by a
// language server. Their items are boosted above other providers' items.
const LanguageServerProviderMarker = "lsp"

var gitCommandPattern = regexp.MustCompile(`^\s*git\b`)

// RankingOptions tune the comparator for the shell and platform.
type RankingOptions struct {
	// GOOS selects the file extension score table. Defaults to runtime.GOOS.
	GOOS string
}

// RankingModel sorts the items of one request. It is built per request and
// discarded once the caller has read the result; it is not safe for
// concurrent use.
type RankingModel struct {
	items      []*Item
	line       LineContext
	extScores  map[string]float64
	labels     *labelCollator
	isArgument bool
	isGit      bool
	sorted     bool
}

// NewRankingModel creates a model over items for the given line.
func NewRankingModel(items []*Item, line LineContext, opts RankingOptions) *RankingModel {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	return &RankingModel{
		items:      slices.Clone(items),
		line:       line,
		extScores:  extensionScoreTable(goos),
		labels:     newLabelCollator(),
		isArgument: line.IsArgument(),
		isGit:      gitCommandPattern.MatchString(line.LeadingLineContent),
	}
}

// Items returns the items in rank order.
func (m *RankingModel) Items() []*Item {
	if !m.sorted {
		slices.SortStableFunc(m.items, m.Compare)
		m.sorted = true
	}
	return m.items
}

// Compare orders a before b when it returns a negative number. The stages run
// in a fixed order and the first non-zero stage decides.
func (m *RankingModel) Compare(a, b *Item) int {
	ak, bk := a.Completion.Kind, b.Completion.Kind

	// Always-on-top inline suggestions win in both directions.
	if ak == KindInlineSuggestionAlwaysOnTop && ak != bk {
		return -1
	}
	if bk == KindInlineSuggestionAlwaysOnTop && ak != bk {
		return 1
	}

	// Language server items ahead of everything else.
	aLSP := strings.Contains(a.Completion.Provider, LanguageServerProviderMarker)
	bLSP := strings.Contains(b.Completion.Provider, LanguageServerProviderMarker)
	if aLSP && !bLSP {
		return -1
	}
	if bLSP && !aLSP {
		return 1
	}

	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}

	if ak == KindInlineSuggestion && ak != bk {
		return -1
	}
	if bk == KindInlineSuggestion && ak != bk {
		return 1
	}

	// __init__/ and friends go after their siblings.
	if a.UnderscorePenalty != b.UnderscorePenalty {
		return a.UnderscorePenalty - b.UnderscorePenalty
	}

	// Files typed as the command itself: group by name, then prefer the
	// extensions the platform would run.
	if !m.isArgument && ak == KindFile && bk == KindFile {
		if a.LabelLowExcludeFileExt != b.LabelLowExcludeFileExt {
			return m.labels.compare(a.LabelLowExcludeFileExt, b.LabelLowExcludeFileExt)
		}
		if d := len(a.LabelLowExcludeFileExt) - len(b.LabelLowExcludeFileExt); d != 0 {
			return d
		}
		as, bs := m.extScores[a.FileExtLow], m.extScores[b.FileExtLow]
		if as != bs {
			if as > bs {
				return -1
			}
			return 1
		}
		if d := len(a.FileExtLow) - len(b.FileExtLow); d != 0 {
			return d
		}
	}

	if m.isGit && ak == KindArgument && bk == KindArgument {
		aMain, bMain := isMainBranch(a.Completion.Label.Label), isMainBranch(b.Completion.Label.Label)
		if aMain && !bMain {
			return -1
		}
		if bMain && !aMain {
			return 1
		}
	}

	if ak == KindMethod && bk == KindMethod {
		if d := detailWeight(b) - detailWeight(a); d != 0 {
			return d
		}
	}

	if ak == KindFolder && bk == KindFolder && a.LabelLowNormalizedPath != "" && b.LabelLowNormalizedPath != "" {
		ap, bp := a.LabelLowNormalizedPath, b.LabelLowNormalizedPath
		if d := strings.Count(ap, "/") - strings.Count(bp, "/"); d != 0 {
			return d
		}
		if ap != bp {
			if strings.HasPrefix(bp, ap) {
				return -1
			}
			if strings.HasPrefix(ap, bp) {
				return 1
			}
		}
	}

	if ak != bk {
		aCmd, bCmd := isCommandKind(ak), isCommandKind(bk)
		if aCmd && !bCmd {
			return -1
		}
		if bCmd && !aCmd {
			return 1
		}
		if ak.IsResource() && !bk.IsResource() {
			return 1
		}
		if bk.IsResource() && !ak.IsResource() {
			return -1
		}
	}

	return m.labels.compare(a.LabelLow, b.LabelLow)
}

func isMainBranch(label string) bool {
	return label == "main" || label == "master"
}

func isCommandKind(k Kind) bool {
	return k == KindMethod || k == KindAlias
}

// detailWeight rates how much a method completion tells the user. A
// structured label description counts for more than detail or documentation.
func detailWeight(item *Item) int {
	w := 0
	if item.Completion.Label.Description != "" {
		w += 2
	}
	if item.Completion.Detail != "" {
		w++
	}
	if item.Completion.Documentation != "" {
		w++
	}
	return w
}

// labelCollator compares labels in locale order with punctuation ignored, so
// dotfiles sort among regular names instead of grouping at the top.
type labelCollator struct {
	collator    *collate.Collator
	punctuation transform.Transformer
}

func newLabelCollator() *labelCollator {
	return &labelCollator{
		collator:    collate.New(language.English),
		punctuation: runes.Remove(runes.In(unicode.Punct)),
	}
}

// compare returns 0 for labels that differ only in punctuation, e.g. "a" and
// ".a". The tie is intended: the stable sort then keeps provider order, which
// is what places ".a" before "a" in [b, .a, a, .b]. Do not add a tiebreak.
func (c *labelCollator) compare(a, b string) int {
	return c.collator.CompareString(c.strip(a), c.strip(b))
}

func (c *labelCollator) strip(s string) string {
	out, _, err := transform.String(c.punctuation, s)
	if err != nil {
		return s
	}
	return out
}
