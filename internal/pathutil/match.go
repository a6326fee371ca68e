package pathutil

import (
	"strings"
	"unicode"
)

// IsPattern reports whether s contains wildcard characters.
func IsPattern(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Match reports whether input matches pattern. '*' matches any run of
// characters including the empty one, '?' matches exactly one character.
// Comparison ignores case and treats both slash styles as equal.
// An empty pattern matches everything.
func Match(input, pattern string) bool {
	if pattern == "" {
		return true
	}
	in := []rune(input)
	pat := []rune(pattern)

	i, p := 0, 0
	star, mark := -1, 0
	for i < len(in) {
		switch {
		case p < len(pat) && pat[p] == '*':
			star = p
			mark = i
			p++
		case p < len(pat) && (pat[p] == '?' || runeEqual(pat[p], in[i])):
			i++
			p++
		case star >= 0:
			p = star + 1
			mark++
			i = mark
		default:
			return false
		}
	}
	for p < len(pat) && pat[p] == '*' {
		p++
	}
	return p == len(pat)
}

func runeEqual(a, b rune) bool {
	if a == b {
		return true
	}
	if IsSeparator(a) && IsSeparator(b) {
		return true
	}
	return unicode.ToLower(a) == unicode.ToLower(b)
}
