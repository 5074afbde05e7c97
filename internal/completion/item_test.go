package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewItemDerivedKeys(t *testing.T) {
	tests := []struct {
		name       string
		completion RawCompletion
		stripped   string
		ext        string
		normalized string
		penalty    int
	}{
		{
			name:       "file with extension",
			completion: RawCompletion{Label: PlainLabel("Build.SH"), Kind: KindFile},
			stripped:   "build",
			ext:        "sh",
			normalized: "build.sh",
		},
		{
			name:       "dotfile has no extension",
			completion: RawCompletion{Label: PlainLabel(".bashrc"), Kind: KindFile},
			stripped:   ".bashrc",
			normalized: ".bashrc",
		},
		{
			name:       "dotfile inside a folder",
			completion: RawCompletion{Label: PlainLabel("./.config"), Kind: KindFile},
			stripped:   "./.config",
			normalized: "./.config",
		},
		{
			name:       "only the final suffix is stripped",
			completion: RawCompletion{Label: PlainLabel("archive.tar.gz"), Kind: KindFile},
			stripped:   "archive.tar",
			ext:        "gz",
			normalized: "archive.tar.gz",
		},
		{
			name:       "folder trailing separator removed",
			completion: RawCompletion{Label: PlainLabel(`src\Lib\`), Kind: KindFolder},
			stripped:   `src\lib\`,
			normalized: "src/lib",
		},
		{
			name:       "underscore folder",
			completion: RawCompletion{Label: PlainLabel("pkg/__pycache__/"), Kind: KindFolder},
			stripped:   "pkg/__pycache__/",
			normalized: "pkg/__pycache__",
			penalty:    1,
		},
		{
			name:       "non resource keeps no path",
			completion: RawCompletion{Label: PlainLabel("_private"), Kind: KindMethod},
			stripped:   "_private",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewItem(tt.completion, NewLineContext("", 0), nil)
			assert.Equal(t, tt.stripped, item.LabelLowExcludeFileExt)
			assert.Equal(t, tt.ext, item.FileExtLow)
			assert.Equal(t, tt.normalized, item.LabelLowNormalizedPath)
			assert.Equal(t, tt.penalty, item.UnderscorePenalty)
		})
	}
}

func TestNewItemScoresTypedWord(t *testing.T) {
	var gotPattern, gotLabel string
	scorer := ScorerFunc(func(pattern, label string) int {
		gotPattern, gotLabel = pattern, label
		return 42
	})

	line := NewLineContext("git checkout ma", 15)
	item := NewItem(RawCompletion{Label: PlainLabel("main"), Kind: KindArgument, ReplacementIndex: 13, ReplacementLength: 2}, line, scorer)

	assert.Equal(t, 42, item.Score)
	assert.Equal(t, "ma", gotPattern)
	assert.Equal(t, "main", gotLabel)
}

func TestLineContext(t *testing.T) {
	line := NewLineContext("ls -la", 2)
	assert.Equal(t, "ls", line.LeadingLineContent)
	assert.False(t, line.IsArgument())

	line = NewLineContext("ls -la", 100)
	assert.Equal(t, "ls -la", line.LeadingLineContent)
	assert.True(t, line.IsArgument())

	assert.Equal(t, "", line.word(-1))
	assert.Equal(t, "", line.word(7))
	assert.Equal(t, "-la", line.word(3))
}

func TestFuzzyScorer(t *testing.T) {
	s := FuzzyScorer{}

	assert.Equal(t, 0, s.Score("", "anything"))
	assert.Equal(t, NoMatchScore, s.Score("xyz", "main"))
	assert.Greater(t, s.Score("ma", "main"), NoMatchScore)
	assert.Equal(t, s.Score("chk", "checkout"), s.Score("chk", "checkout"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "folder", KindFolder.String())
	assert.Equal(t, "inlineSuggestionAlwaysOnTop", KindInlineSuggestionAlwaysOnTop.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.True(t, KindFolder.IsResource())
	assert.True(t, KindFile.IsResource())
	assert.False(t, KindMethod.IsResource())
}
