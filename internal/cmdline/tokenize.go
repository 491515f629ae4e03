package cmdline

import "strings"

// Tokenize splits line on spaces, honoring single and double quoted regions.
//
// A quote character opens a region that only the same character closes;
// inside it spaces and the other quote character are literal. Quote
// characters are dropped from the token. There is no escaping. An
// unterminated region runs to the end of the line, and the partial token is
// still returned. Empty tokens are never produced.
func Tokenize(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
	)

	for _, r := range line {
		switch {
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && r == ' ':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
