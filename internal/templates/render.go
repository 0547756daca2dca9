package templates

import (
	"sort"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeHTML escapes exactly & < > " and ' with their named entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Render replaces every literal occurrence of each key in tmpl with the
// escaped value. Keys are full tokens such as "{{USER_NAME}}". Tokens without
// an entry in values are left as they are.
//
// Substitution is a single pass over tmpl, so a value that happens to contain
// another token is never expanded.
func Render(tmpl string, values map[string]string) string {
	tokens := make([]string, 0, len(values))
	for token := range values {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return tmpl
	}
	// Longest token first so overlapping tokens resolve the same way every time.
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	pairs := make([]string, 0, 2*len(tokens))
	for _, token := range tokens {
		pairs = append(pairs, token, EscapeHTML(values[token]))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
