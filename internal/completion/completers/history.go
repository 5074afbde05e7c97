package completers

import (
	"context"
	"strings"

	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"go.uber.org/zap"
)

// HistoryProviderID is the id HistoryCompleter registers under.
const HistoryProviderID = "history"

// HistorySearcher finds the most recent command starting with a prefix.
type HistorySearcher interface {
	LatestWithPrefix(ctx context.Context, prefix string) (string, bool, error)
}

// HistoryCompleterConfig holds the settings of a HistoryCompleter.
type HistoryCompleterConfig struct {
	History HistorySearcher

	// MinPrefixLength is the shortest prompt that gets a suggestion.
	// Defaults to 1.
	MinPrefixLength int

	Logger *zap.Logger
}

// HistoryCompleter suggests the rest of the most recent matching command from
// history as an inline suggestion.
type HistoryCompleter struct {
	history   HistorySearcher
	minPrefix int
	logger    *zap.Logger
}

// NewHistoryCompleter creates a new HistoryCompleter.
func NewHistoryCompleter(cfg HistoryCompleterConfig) *HistoryCompleter {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	minPrefix := cfg.MinPrefixLength
	if minPrefix <= 0 {
		minPrefix = 1
	}
	return &HistoryCompleter{
		history:   cfg.History,
		minPrefix: minPrefix,
		logger:    logger,
	}
}

func (c *HistoryCompleter) IsBuiltin() bool { return true }

// ProvideCompletions implements completion.Provider. Suggestions are only made
// with the cursor at the end of the prompt.
func (c *HistoryCompleter) ProvideCompletions(ctx context.Context, promptValue string, cursorPosition int, _ bool) (completion.Result, error) {
	if c.history == nil || cursorPosition != len(promptValue) {
		return nil, nil
	}
	if len(promptValue) < c.minPrefix || strings.TrimSpace(promptValue) == "" {
		return nil, nil
	}

	command, ok, err := c.history.LatestWithPrefix(ctx, promptValue)
	if err != nil || !ok {
		return nil, err
	}
	c.logger.Debug("history suggestion", zap.String("prefix", promptValue), zap.String("command", command))

	return completion.Items{{
		Label:             completion.PlainLabel(command),
		Kind:              completion.KindInlineSuggestion,
		Detail:            "history",
		Provider:          HistoryProviderID,
		ReplacementIndex:  0,
		ReplacementLength: len(promptValue),
	}}, nil
}
