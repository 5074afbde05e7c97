package completers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	commands []string // newest last
	err      error
	queries  []string
}

func (h *fakeHistory) LatestWithPrefix(_ context.Context, prefix string) (string, bool, error) {
	h.queries = append(h.queries, prefix)
	if h.err != nil {
		return "", false, h.err
	}
	for i := len(h.commands) - 1; i >= 0; i-- {
		if c := h.commands[i]; len(c) > len(prefix) && strings.HasPrefix(c, prefix) {
			return c, true, nil
		}
	}
	return "", false, nil
}

func TestHistoryCompleter(t *testing.T) {
	history := &fakeHistory{commands: []string{"git status", "git commit -m wip", "go test ./..."}}
	c := NewHistoryCompleter(HistoryCompleterConfig{History: history})

	result, err := c.ProvideCompletions(context.Background(), "git", 3, false)
	require.NoError(t, err)
	items := result.(completion.Items)
	require.Len(t, items, 1)
	assert.Equal(t, "git commit -m wip", items[0].Label.Label)
	assert.Equal(t, completion.KindInlineSuggestion, items[0].Kind)
	assert.Equal(t, HistoryProviderID, items[0].Provider)
	assert.Equal(t, 0, items[0].ReplacementIndex)
	assert.Equal(t, 3, items[0].ReplacementLength)

	result, err = c.ProvideCompletions(context.Background(), "docker", 6, false)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestHistoryCompleterSkips(t *testing.T) {
	history := &fakeHistory{commands: []string{"git status"}}
	c := NewHistoryCompleter(HistoryCompleterConfig{History: history, MinPrefixLength: 2})

	for _, tt := range []struct {
		prompt string
		cursor int
	}{
		{prompt: "", cursor: 0},
		{prompt: "g", cursor: 1},
		{prompt: "   ", cursor: 3},
		{prompt: "git", cursor: 1},
	} {
		result, err := c.ProvideCompletions(context.Background(), tt.prompt, tt.cursor, false)
		require.NoError(t, err)
		assert.Nil(t, result, "%q@%d", tt.prompt, tt.cursor)
	}
	assert.Empty(t, history.queries)

	result, err := NewHistoryCompleter(HistoryCompleterConfig{}).ProvideCompletions(context.Background(), "git", 3, false)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestHistoryCompleterError(t *testing.T) {
	c := NewHistoryCompleter(HistoryCompleterConfig{History: &fakeHistory{err: errors.New("db locked")}})
	_, err := c.ProvideCompletions(context.Background(), "git", 3, false)
	assert.Error(t, err)
}
