package graph

import (
	"sort"
	"strings"
)

// EscapeString makes user-supplied text safe for embedding in a
// single-quoted statement literal.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

// Quote returns the escaped text wrapped in single quotes.
func Quote(s string) string {
	return "'" + EscapeString(s) + "'"
}

// WithParams prefixes the statement with a CYPHER parameter preamble,
// the store's parameter mechanism. Values travel through Quote, keeping
// this the only string-assembly path for user data. Keys are emitted in
// sorted order.
func WithParams(statement string, params map[string]string) string {
	if len(params) == 0 {
		return statement
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("CYPHER ")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(Quote(params[k]))
		b.WriteByte(' ')
	}
	b.WriteString(statement)
	return b.String()
}
