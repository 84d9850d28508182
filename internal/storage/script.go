package storage

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// SplitStatements splits a SQL script on semicolons that are outside string
// literals, quoted identifiers (double quotes, backticks, brackets) and
// comments. Statements are trimmed and empty ones dropped; the terminating
// semicolon is removed.
//
// backslashEscapes makes a backslash inside a single-quoted literal escape the
// next byte, as MySQL does by default.
func SplitStatements(script string, backslashEscapes bool) []string {
	var (
		out   []string
		start int
		quote byte // active quote character, 0 outside literals
	)
	flush := func(end int) {
		if s := strings.TrimSpace(script[start:end]); s != "" {
			out = append(out, s)
		}
	}

	for i := 0; i < len(script); i++ {
		c := script[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote == '\'' && backslashEscapes:
				i++
			case c == quote:
				// A doubled closing character is an escaped one.
				if i+1 < len(script) && script[i+1] == quote {
					i++
				} else {
					quote = 0
				}
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '[':
			quote = ']'
		case '-':
			if i+1 < len(script) && script[i+1] == '-' {
				if nl := strings.IndexByte(script[i:], '\n'); nl >= 0 {
					i += nl
				} else {
					i = len(script)
				}
			}
		case '/':
			if i+1 < len(script) && script[i+1] == '*' {
				if end := strings.Index(script[i+2:], "*/"); end >= 0 {
					i += end + 3
				} else {
					i = len(script)
				}
			}
		case ';':
			flush(i)
			start = i + 1
		}
	}
	flush(len(script))
	return out
}

// StatementError reports the failing statement of a script. Index is 1-based.
type StatementError struct {
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d (%s): %v", e.Index, abbreviate(e.Statement, 80), e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Apply executes every statement of script in order and stops at the first
// failure. It returns the number of statements executed successfully.
func Apply(ctx context.Context, repo Repository, script string) (int, error) {
	stmts := SplitStatements(script, repo.Dialect().BackslashEscapes)
	start := time.Now()
	for i, s := range stmts {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := repo.Exec(ctx, s); err != nil {
			return i, &StatementError{Index: i + 1, Statement: s, Err: err}
		}
	}
	log.Printf("storage: applied statements=%d dialect=%s elapsed=%s", len(stmts), repo.Dialect().Name, time.Since(start).Round(time.Millisecond))
	return len(stmts), nil
}

// ScalarFloat converts a scanned column value to a float. ok is false for NULL.
func ScalarFloat(v any) (f float64, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return x, true, nil
	case float32:
		return float64(x), true, nil
	case int64:
		return float64(x), true, nil
	case int32:
		return float64(x), true, nil
	case int:
		return float64(x), true, nil
	case int16:
		return float64(x), true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false, fmt.Errorf("storage: %q is not numeric", x)
		}
		return f, true, nil
	case []byte:
		return ScalarFloat(string(x))
	default:
		return 0, false, fmt.Errorf("storage: unsupported numeric type %T", v)
	}
}
