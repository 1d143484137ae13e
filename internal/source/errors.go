package source

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the configured source does not exist.
var ErrNotFound = errors.New("source not found")

// ParseError reports malformed input. Line is 1-based and counts the header
// row; zero means the problem is not tied to a line. Record identifies the
// offending row in sources without lines, such as a database primary key.
type ParseError struct {
	Source string
	Line   int
	Column string
	Record string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Record != "":
		return fmt.Sprintf("parse %s: record %s: %v", e.Source, e.Record, e.Err)
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("parse %s: line %d, column %s: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parse %s: line %d: %v", e.Source, e.Line, e.Err)
	default:
		return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the source is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsParseError reports whether err carries a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
