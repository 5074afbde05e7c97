package lspconv

import (
	"testing"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func listOf(prompt string, completions ...completion.RawCompletion) completion.CompletionList {
	line := completion.NewLineContext(prompt, len(prompt))
	list := make(completion.CompletionList, 0, len(completions))
	for _, c := range completions {
		list = append(list, completion.NewItem(c, line, nil))
	}
	return list
}

func TestToCompletionList(t *testing.T) {
	prompt := "git checkout ma"
	list := listOf(prompt,
		completion.RawCompletion{Label: completion.PlainLabel("main"), Kind: completion.KindArgument, ReplacementIndex: 13, ReplacementLength: 2},
		completion.RawCompletion{Label: completion.Label{Label: "master", Description: "old default"}, Kind: completion.KindArgument, Detail: "branch", Documentation: "tracks origin", ReplacementIndex: 13, ReplacementLength: 2},
	)

	got := ToCompletionList(list, prompt)
	require.Len(t, got.Items, 2)
	assert.False(t, got.IsIncomplete)

	first := got.Items[0]
	assert.Equal(t, "main", first.Label)
	assert.Equal(t, protocol.CompletionItemKindValue, first.Kind)
	assert.Equal(t, "0", first.SortText)
	assert.Nil(t, first.Documentation)
	require.NotNil(t, first.TextEdit)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 13},
		End:   protocol.Position{Line: 0, Character: 15},
	}, first.TextEdit.Range)
	assert.Equal(t, "main", first.TextEdit.NewText)

	second := got.Items[1]
	assert.Equal(t, "1", second.SortText)
	assert.Equal(t, "branch", second.Detail)
	assert.Equal(t, "old default\n\ntracks origin", second.Documentation)
}

func TestToCompletionListSortTextIsPadded(t *testing.T) {
	completions := make([]completion.RawCompletion, 12)
	for i := range completions {
		completions[i] = completion.RawCompletion{Label: completion.PlainLabel("x"), Kind: completion.KindArgument}
	}
	got := ToCompletionList(listOf("", completions...), "")
	assert.Equal(t, "00", got.Items[0].SortText)
	assert.Equal(t, "11", got.Items[11].SortText)
	assert.Less(t, got.Items[2].SortText, got.Items[10].SortText)
}

func TestToCompletionListClampsAndCountsUTF16(t *testing.T) {
	prompt := "cat 😀é "
	got := ToCompletionList(listOf(prompt,
		completion.RawCompletion{Label: completion.PlainLabel("a"), Kind: completion.KindFile, ReplacementIndex: len(prompt), ReplacementLength: 0},
		completion.RawCompletion{Label: completion.PlainLabel("b"), Kind: completion.KindFile, ReplacementIndex: 4, ReplacementLength: 100},
	), prompt)

	// 4 ASCII bytes, a surrogate pair, one BMP rune and a space.
	assert.Equal(t, uint32(8), got.Items[0].TextEdit.Range.Start.Character)
	assert.Equal(t, uint32(4), got.Items[1].TextEdit.Range.Start.Character)
	assert.Equal(t, uint32(8), got.Items[1].TextEdit.Range.End.Character)
}

func TestKind(t *testing.T) {
	tests := map[completion.Kind]protocol.CompletionItemKind{
		completion.KindFile:                        protocol.CompletionItemKindFile,
		completion.KindFolder:                      protocol.CompletionItemKindFolder,
		completion.KindMethod:                      protocol.CompletionItemKindMethod,
		completion.KindAlias:                       protocol.CompletionItemKindReference,
		completion.KindArgument:                    protocol.CompletionItemKindValue,
		completion.KindOption:                      protocol.CompletionItemKindProperty,
		completion.KindFlag:                        protocol.CompletionItemKindProperty,
		completion.KindOptionValue:                 protocol.CompletionItemKindEnumMember,
		completion.KindInlineSuggestion:            protocol.CompletionItemKindText,
		completion.KindInlineSuggestionAlwaysOnTop: protocol.CompletionItemKindText,
		completion.Kind(99):                        protocol.CompletionItemKindText,
	}
	for kind, want := range tests {
		assert.Equal(t, want, Kind(kind), kind.String())
	}
}

func TestPreselectAlwaysOnTop(t *testing.T) {
	got := ToCompletionList(listOf("gi",
		completion.RawCompletion{Label: completion.PlainLabel("git status"), Kind: completion.KindInlineSuggestionAlwaysOnTop, ReplacementLength: 2},
		completion.RawCompletion{Label: completion.PlainLabel("git"), Kind: completion.KindMethod, ReplacementLength: 2},
	), "gi")
	assert.True(t, got.Items[0].Preselect)
	assert.False(t, got.Items[1].Preselect)
}
