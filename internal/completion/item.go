package completion

import (
	"strings"
)

// LineContext is the part of the prompt that ranking looks at.
type LineContext struct {
	// LeadingLineContent is the prompt text before the cursor.
	LeadingLineContent string
	CursorPosition     int
}

// NewLineContext builds the line context for a cursor inside promptValue.
func NewLineContext(promptValue string, cursorPosition int) LineContext {
	cursorPosition = clampCursor(promptValue, cursorPosition)
	return LineContext{
		LeadingLineContent: promptValue[:cursorPosition],
		CursorPosition:     cursorPosition,
	}
}

// IsArgument reports whether the cursor is past the command word.
func (l LineContext) IsArgument() bool {
	return strings.Contains(l.LeadingLineContent, " ")
}

// Item wraps one completion with the keys the ranking model sorts by. Items
// are built fresh for every request.
type Item struct {
	Completion RawCompletion

	// LabelLow is the lowercase label.
	LabelLow string
	// LabelLowExcludeFileExt is LabelLow without the file extension for files.
	LabelLowExcludeFileExt string
	// FileExtLow is the lowercase extension (without the dot) of a file.
	FileExtLow string
	// LabelLowNormalizedPath is the separator-agnostic path of a file or
	// folder, without a trailing separator for folders.
	LabelLowNormalizedPath string
	// UnderscorePenalty is 1 when the last path segment starts with '_'.
	UnderscorePenalty int
	// Score is the fuzzy score of the label against the typed word.
	Score int
}

// NewItem derives the sort keys of c for the given line.
func NewItem(c RawCompletion, line LineContext, scorer Scorer) *Item {
	labelLow := strings.ToLower(c.Label.Label)
	item := &Item{
		Completion:             c,
		LabelLow:               labelLow,
		LabelLowExcludeFileExt: labelLow,
	}

	if c.Kind == KindFile {
		if ext, ok := fileExtension(labelLow); ok {
			item.LabelLowExcludeFileExt = labelLow[:len(labelLow)-len(ext)-1]
			item.FileExtLow = ext
		}
	}

	if c.Kind.IsResource() {
		normalized := strings.ReplaceAll(labelLow, `\`, "/")
		if c.Kind == KindFolder && len(normalized) > 1 {
			normalized = strings.TrimSuffix(normalized, "/")
		}
		item.LabelLowNormalizedPath = normalized
		if strings.HasPrefix(lastSegment(normalized), "_") {
			item.UnderscorePenalty = 1
		}
	}

	if scorer != nil {
		item.Score = scorer.Score(line.word(c.ReplacementIndex), c.Label.Label)
	}
	return item
}

// word returns the text the completion would replace, which is what the
// user typed towards it.
func (l LineContext) word(replacementIndex int) string {
	if replacementIndex < 0 || replacementIndex > len(l.LeadingLineContent) {
		return ""
	}
	return l.LeadingLineContent[replacementIndex:]
}

// fileExtension returns the extension of the last path segment. A dot that
// starts the segment marks a dotfile, not an extension.
func fileExtension(label string) (string, bool) {
	segment := lastSegment(label)
	idx := strings.LastIndex(segment, ".")
	if idx <= 0 {
		return "", false
	}
	return segment[idx+1:], true
}

func lastSegment(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func clampCursor(promptValue string, cursorPosition int) int {
	if cursorPosition < 0 {
		return 0
	}
	if cursorPosition > len(promptValue) {
		return len(promptValue)
	}
	return cursorPosition
}
