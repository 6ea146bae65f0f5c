// Package printer renders values for display. Matched scalars render as
// JSON scalars, so a string match prints quoted ("Alice"), and every
// rendered block is valid JSON on its own.
package printer

import (
	"strings"

	"github.com/dmorlim/jqr/internal/json"
	"github.com/dmorlim/jqr/internal/value"
)

// Document renders a whole document as indented JSON, newline-terminated.
func Document(v value.Value) (string, error) {
	b, err := json.EncodeIndent(v)
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// Matches renders query results: each match is its own pretty-printed block,
// in match order, newline-separated. An empty match set renders as the empty
// string.
func Matches(matches []value.Value) (string, error) {
	if len(matches) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, m := range matches {
		b, err := json.EncodeIndent(m)
		if err != nil {
			return "", err
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
