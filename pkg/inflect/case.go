package inflect

import (
	"regexp"
	"strings"
)

var (
	wordSeparators  = regexp.MustCompile(`[\s_]+`)
	camelBoundary   = regexp.MustCompile(`[a-z][A-Z]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	humanSeparators = regexp.MustCompile(`[_-]+`)
)

// Camelize converts "some_value" or "some value" to "SomeValue".
func Camelize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	words := strings.Split(wordSeparators.ReplaceAllString(s, " "), " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, w := range words {
		if w == "" {
			continue
		}
		if c := w[0]; c >= 'a' && c <= 'z' {
			b.WriteByte(c - ('a' - 'A'))
			w = w[1:]
		}
		b.WriteString(w)
	}
	return b.String()
}

// Decamelize converts "SomeValue" to "some value".
func Decamelize(s string) string {
	return DecamelizeWith(s, " ")
}

// DecamelizeWith inserts sep at every lowercase-to-uppercase boundary and
// lowercases the result.
func DecamelizeWith(s, sep string) string {
	s = camelBoundary.ReplaceAllStringFunc(strings.TrimSpace(s), func(m string) string {
		return m[:1] + sep + m[1:]
	})
	return strings.ToLower(s)
}

// Underscore replaces whitespace runs with a single underscore.
func Underscore(s string) string {
	return whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), "_")
}

// Humanize replaces runs of underscores and hyphens with a single space.
func Humanize(s string) string {
	return humanSeparators.ReplaceAllString(strings.TrimSpace(s), " ")
}
