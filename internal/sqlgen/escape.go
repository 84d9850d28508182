// Package sqlgen renders the exported SQL scripts: the country reference
// table, the wide official temperature table, and the predicted temperature
// table. Rendering is pure and deterministic; writing is done by Write.
package sqlgen

import (
	"fmt"
	"strings"
)

// Escape selects how single quotes inside string literals are escaped.
type Escape string

const (
	// EscapeDouble doubles quotes: O'Brien -> 'O''Brien'. Portable.
	EscapeDouble Escape = "double"
	// EscapeBackslash prefixes quotes (and backslashes) with a backslash:
	// O'Brien -> 'O\'Brien'. Only valid for MySQL.
	EscapeBackslash Escape = "backslash"
)

// ParseEscape validates an escape mode name. The empty string is
// EscapeDouble.
func ParseEscape(s string) (Escape, error) {
	switch e := Escape(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EscapeDouble, nil
	case EscapeDouble, EscapeBackslash:
		return e, nil
	default:
		return "", fmt.Errorf("sqlgen: unknown escape mode %q (want %q or %q)", s, EscapeDouble, EscapeBackslash)
	}
}

var backslashReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Quote renders s as a single-quoted SQL string literal.
func (e Escape) Quote(s string) string {
	if e == EscapeBackslash {
		return "'" + backslashReplacer.Replace(s) + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
