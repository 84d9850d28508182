package climate

import "fmt"

// ParseError reports input that does not fit the data model: a value-column
// header without a leading four-digit year, or a cell that is neither a number
// nor a missing-value token.
type ParseError struct {
	Column string
	Row    int // 1-based data row; 0 for header errors
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("climate: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("climate: row %d column %q value %q: %s", e.Row, e.Column, e.Value, e.Reason)
}
