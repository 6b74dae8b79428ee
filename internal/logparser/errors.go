package logparser

import "fmt"

// ParseError describes one malformed record. It is collected as a warning,
// never returned as the error of Parse.
type ParseError struct {
	// Line is the 1-based line number in the source log.
	Line int
	// Field is the 0-based payload field at fault, or -1 for the whole record.
	Field int
	// Text is the offending field or line, trimmed.
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("line %d, field %d: %s: %q", e.Line, e.Field, e.Reason, e.Text)
}
