package matching

import "fmt"

// ParseError reports a malformed input document. The run that produced it has
// no partial results.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse input: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// FieldMissingError reports a required key absent from an input record.
// Records are validated before entering the engine, so the matching logic
// itself never sees an incomplete record.
type FieldMissingError struct {
	Record string // "trade" or "actual"
	ID     string // record identifier, when it had one
	Field  string
}

func (e *FieldMissingError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: missing required field %q", e.Record, e.ID, e.Field)
	}
	return fmt.Sprintf("%s: missing required field %q", e.Record, e.Field)
}
