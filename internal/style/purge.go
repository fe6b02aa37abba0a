package style

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Purge removes the qualified rules of src whose selectors can never
// match given the names in keep. A selector survives when every type,
// class and id it references is in keep; the universal selector,
// pseudo-classes and attribute selectors are not checked. Conditional
// group rules are purged recursively and dropped once empty. Other
// at-rules are kept verbatim.
func Purge(src string, keep TokenSet) (string, error) {
	sheet, err := parser.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing stylesheet: %w", err)
	}
	sheet.Rules = purgeRules(sheet.Rules, keep)
	return sheet.String(), nil
}

func purgeRules(rules []*css.Rule, keep TokenSet) []*css.Rule {
	out := rules[:0]
	for _, rule := range rules {
		switch rule.Kind {
		case css.QualifiedRule:
			kept := make([]string, 0, len(rule.Selectors))
			for _, sel := range rule.Selectors {
				if selectorKept(sel, keep) {
					kept = append(kept, sel)
				}
			}
			if len(kept) == 0 {
				continue
			}
			rule.Selectors = kept
			rule.Prelude = strings.Join(kept, ", ")
		case css.AtRule:
			if isGroupingRule(rule.Name) {
				rule.Rules = purgeRules(rule.Rules, keep)
				if len(rule.Rules) == 0 {
					continue
				}
			}
		}
		out = append(out, rule)
	}
	return out
}

func isGroupingRule(name string) bool {
	switch strings.ToLower(name) {
	case "@media", "@supports", "@document":
		return true
	}
	return false
}

func selectorKept(sel string, keep TokenSet) bool {
	for _, name := range SelectorNames(sel) {
		if !keep.Has(name) {
			return false
		}
	}
	return true
}

// SelectorNames returns the unescaped type, class and id names referenced
// by a selector. Attribute selectors, quoted strings, pseudo-class names
// and the contents of pseudo-class arguments other than classes and ids
// are skipped.
func SelectorNames(sel string) []string {
	var names []string
	var quote byte
	inAttr := false
	depth := 0
	compound := true

	for i := 0; i < len(sel); i++ {
		c := sel[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			inAttr = true
			compound = false
		case c == ']':
			inAttr = false
		case inAttr:
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && isCombinator(c):
			compound = true
		case compound && depth == 0 && (c == '\\' || isNameStart(c)):
			name, n := readIdent(sel[i:])
			if name != "" {
				names = append(names, name)
			}
			if n > 0 {
				i += n - 1
			}
			compound = false
		case c == '\\':
			i++
		case c == '.' || c == '#':
			name, n := readIdent(sel[i+1:])
			if name != "" {
				names = append(names, name)
			}
			i += n
			compound = false
		case c == ':':
			for i+1 < len(sel) && (sel[i+1] == ':' || isNameByte(sel[i+1])) {
				i++
			}
			compound = false
		default:
			compound = false
		}
	}
	return names
}

func isCombinator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '>', '+', '~', ',':
		return true
	}
	return false
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// readIdent reads a CSS identifier, resolving escapes, and returns it
// together with the number of bytes consumed.
func readIdent(s string) (string, int) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' {
			r, n := readEscape(s[i+1:])
			if n == 0 {
				break
			}
			b.WriteRune(r)
			i += 1 + n
			continue
		}
		if !isNameByte(c) {
			break
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), i
}

// readEscape decodes the escape following a backslash: up to six hex
// digits plus one optional whitespace, or a single literal character.
func readEscape(s string) (rune, int) {
	if s == "" {
		return 0, 0
	}
	n := 0
	for n < len(s) && n < 6 && isHex(s[n]) {
		n++
	}
	if n == 0 {
		r, size := utf8.DecodeRuneInString(s)
		return r, size
	}
	v, err := strconv.ParseUint(s[:n], 16, 32)
	if err != nil || v == 0 || v > utf8.MaxRune {
		v = utf8.RuneError
	}
	if n < len(s) && (s[n] == ' ' || s[n] == '\t' || s[n] == '\n') {
		n++
	}
	return rune(v), n
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
