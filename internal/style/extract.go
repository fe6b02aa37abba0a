package style

import "regexp"

// ws matches what a browser-side \s matches, which is wider than RE2's.
const ws = `\s\v\p{Zs}\x{feff}\x{2028}\x{2029}`

var (
	broadPattern = regexp.MustCompile("[^<>\"'`" + ws + "]*[^<>\"'`" + ws + ":]")
	innerPattern = regexp.MustCompile("[^<>\"'`" + ws + ".()]*[^<>\"'`" + ws + ".():]")
)

// Extract returns candidate class names found in a template: every broad
// match followed by every inner match. Duplicates and order are kept.
func Extract(content string) []string {
	broad := broadPattern.FindAllString(content, -1)
	inner := innerPattern.FindAllString(content, -1)

	out := make([]string, 0, len(broad)+len(inner))
	out = append(out, broad...)
	return append(out, inner...)
}

// TokenSet is the set of names a purge keeps.
type TokenSet map[string]struct{}

// NewTokenSet builds a set from tokens.
func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	s.Add(tokens...)
	return s
}

// Add inserts tokens.
func (s TokenSet) Add(tokens ...string) {
	for _, t := range tokens {
		s[t] = struct{}{}
	}
}

// Has reports membership.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}
