package completers

// word is one shell word of a command line, as typed.
type word struct {
	text  string
	start int
}

func (w word) end() int {
	return w.start + len(w.text)
}

// splitWords splits line into shell words, honoring quotes and backslash
// escapes. Quotes and escapes are kept in the word text. When the line is
// empty or ends with an unquoted blank, an empty word at the end of the line
// is appended for the argument about to be typed.
func splitWords(line string) []word {
	var (
		words   []word
		start   = -1
		quote   byte
		escaped bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '\\' && quote == '"' {
				escaped = true
			}
		case c == '\\':
			escaped = true
		case c == '\'' || c == '"':
			quote = c
		case c == ' ' || c == '\t':
			if start >= 0 {
				words = append(words, word{text: line[start:i], start: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, word{text: line[start:], start: start})
	} else {
		words = append(words, word{start: len(line)})
	}
	return words
}
