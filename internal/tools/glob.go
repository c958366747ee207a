package tools

import (
	"regexp"
	"strings"
)

// Unix shell-style pattern matching, fnmatch flavor: `*` matches any run
// of characters including path separators, `?` matches one character,
// `[seq]` and `[!seq]` match character classes. The pattern is anchored
// at both ends, so an unwildcarded pattern must match the whole string.

// hasWildcard reports whether the pattern contains any wildcard character.
func hasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// widenPattern wraps a wildcard-free pattern so it behaves as a substring
// match. Patterns that already contain a wildcard are left untouched.
func widenPattern(pattern string) string {
	if strings.Contains(pattern, "*") {
		return pattern
	}
	return "*" + pattern + "*"
}

// matchGlob reports whether s matches the shell-style pattern.
// An unparseable pattern matches nothing.
func matchGlob(pattern, s string, caseSensitive bool) bool {
	re, err := compileGlob(pattern, caseSensitive)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// compileGlob translates a shell-style pattern into an anchored regexp.
func compileGlob(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	var b strings.Builder
	if !caseSensitive {
		b.WriteString("(?i)")
	}
	b.WriteString("(?s)^")

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			// Find the closing bracket; "[" with no closer is literal.
			j := i + 1
			if j < len(runes) && (runes[j] == '!' || runes[j] == '^') {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				b.WriteString(regexp.QuoteMeta(string(c)))
				continue
			}
			class := string(runes[i+1 : j])
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString("$")
	return regexp.Compile(b.String())
}
