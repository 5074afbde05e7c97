// Package lspconv converts ranked completions to Language Server Protocol
// completion payloads.
package lspconv

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/samber/lo"
	"go.lsp.dev/protocol"
)

var kinds = map[completion.Kind]protocol.CompletionItemKind{
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
}

// Kind maps a completion kind to its LSP counterpart.
func Kind(k completion.Kind) protocol.CompletionItemKind {
	if kind, ok := kinds[k]; ok {
		return kind
	}
	return protocol.CompletionItemKindText
}

// ToCompletionList converts ranked items for a single-line prompt. SortText
// preserves the rank order and every item carries a TextEdit for its
// replacement range on line 0.
func ToCompletionList(items completion.CompletionList, promptValue string) *protocol.CompletionList {
	width := len(fmt.Sprint(len(items)))
	out := make([]protocol.CompletionItem, 0, len(items))
	for i, item := range items {
		c := item.Completion
		start := min(max(c.ReplacementIndex, 0), len(promptValue))
		end := min(start+max(c.ReplacementLength, 0), len(promptValue))

		out = append(out, protocol.CompletionItem{
			Label:         c.Label.Label,
			Kind:          Kind(c.Kind),
			Detail:        c.Detail,
			Documentation: documentation(c),
			SortText:      fmt.Sprintf("%0*d", width, i),
			FilterText:    c.Label.Label,
			Preselect:     i == 0 && c.Kind == completion.KindInlineSuggestionAlwaysOnTop,
			TextEdit: &protocol.TextEdit{
				Range: protocol.Range{
					Start: protocol.Position{Line: 0, Character: utf16Offset(promptValue, start)},
					End:   protocol.Position{Line: 0, Character: utf16Offset(promptValue, end)},
				},
				NewText: c.Label.Label,
			},
		})
	}
	return &protocol.CompletionList{Items: out}
}

// documentation is nil when there is nothing to show so it is omitted from
// the payload.
func documentation(c completion.RawCompletion) interface{} {
	parts := lo.Compact([]string{c.Label.Description, c.Documentation})
	if len(parts) == 0 {
		return nil
	}
	return strings.Join(parts, "\n\n")
}

// utf16Offset converts a byte offset in s to UTF-16 code units, the unit of
// LSP positions.
func utf16Offset(s string, byteOffset int) uint32 {
	var n uint32
	for _, r := range s[:byteOffset] {
		n += uint32(max(utf16.RuneLen(r), 1))
	}
	return n
}
