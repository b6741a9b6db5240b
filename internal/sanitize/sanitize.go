package sanitize

import "strings"

// DefaultReplacement is used for both tabs and newlines unless configured otherwise
const DefaultReplacement = " "

// forbidden lists the segments that are dropped from token sequences
var forbidden = map[string]struct{}{
	"(": {},
	",": {},
	"_": {},
	".": {},
	"-": {},
	";": {},
	")": {},
}

// Text replaces every tab and newline in value. A CRLF pair and a lone
// carriage return both count as one newline.
func Text(value, tabReplacement, newlineReplacement string) string {
	if !strings.ContainsAny(value, "\t\r\n") {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '\t':
			b.WriteString(tabReplacement)
		case '\r':
			if i+1 < len(value) && value[i+1] == '\n' {
				i++
			}
			b.WriteString(newlineReplacement)
		case '\n':
			b.WriteString(newlineReplacement)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsForbidden reports whether token is one of the punctuation markers
// removed by CleanTokens.
func IsForbidden(token string) bool {
	_, ok := forbidden[token]
	return ok
}

// CleanTokens returns a copy of tokens without forbidden markers.
// Only whole tokens are compared; "a-" or "(x" are kept as they are.
func CleanTokens(tokens []string) []string {
	cleaned := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if IsForbidden(token) {
			continue
		}
		cleaned = append(cleaned, token)
	}
	return cleaned
}
