package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/atinylittleshell/gshcomplete/internal/lspconv"
	"github.com/atinylittleshell/gshcomplete/internal/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"golang.org/x/term"
)

type jsonItem struct {
	Label             string `json:"label"`
	Description       string `json:"description,omitempty"`
	Kind              string `json:"kind"`
	Detail            string `json:"detail,omitempty"`
	ReplacementIndex  int    `json:"replacementIndex"`
	ReplacementLength int    `json:"replacementLength"`
	Provider          string `json:"provider,omitempty"`
}

func toJSONItems(items completion.CompletionList) []jsonItem {
	return lo.Map(items, func(item *completion.Item, _ int) jsonItem {
		c := item.Completion
		return jsonItem{
			Label:             c.Label.Label,
			Description:       c.Label.Description,
			Kind:              c.Kind.String(),
			Detail:            c.Detail,
			ReplacementIndex:  c.ReplacementIndex,
			ReplacementLength: c.ReplacementLength,
			Provider:          c.Provider,
		}
	})
}

func writeJSON(w io.Writer, items completion.CompletionList) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSONItems(items))
}

func writeLSP(w io.Writer, items completion.CompletionList, prompt string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(lspconv.ToCompletionList(items, prompt))
}

// writeList prints one completion per line. Columns are tab separated when
// styled is false so the output stays easy to cut.
func writeList(w io.Writer, items completion.CompletionList, styled bool) error {
	if !styled {
		for _, item := range items {
			c := item.Completion
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", c.Label.Label, c.Kind, c.Detail); err != nil {
				return err
			}
		}
		return nil
	}

	width := lo.Max(lo.Map(items, func(item *completion.Item, _ int) int {
		return lipgloss.Width(item.Completion.Label.Label)
	}))
	kindWidth := lo.Max(lo.Map(items, func(item *completion.Item, _ int) int {
		return len(item.Completion.Kind.String())
	}))

	var sb strings.Builder
	for _, item := range items {
		c := item.Completion
		sb.WriteString(styles.ForKind(c.Kind).Width(width).Render(c.Label.Label))
		sb.WriteString("  ")
		sb.WriteString(styles.KindStyle.Width(kindWidth).Render(c.Kind.String()))
		if c.Detail != "" {
			sb.WriteString("  ")
			sb.WriteString(styles.DetailStyle.Render(c.Detail))
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
