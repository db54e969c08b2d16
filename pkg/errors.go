package cherentrace

import "fmt"

// InvalidEncodingError represents a packed numeric field whose raw value is
// outside the domain of the encoding (e.g. a negative generation counter).
type InvalidEncodingError struct {
	Field string
	Value int
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid encoding for %q: %d", e.Field, e.Value)
}

// DegenerateDirectionError represents a direction cosine pair that violates
// the unit-norm constraint. It signals a corrupt input row.
type DegenerateDirectionError struct {
	Cx float64
	Cy float64
}

func (e *DegenerateDirectionError) Error() string {
	return fmt.Sprintf("degenerate direction: cx=%g cy=%g (cx^2+cy^2=%g > 1)",
		e.Cx, e.Cy, e.Cx*e.Cx+e.Cy*e.Cy)
}

// MissingFieldError represents a required raw column or parameter absent from
// the source output for the requested mode.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// EventMismatchError represents a query for an event the source is not
// currently positioned on.
type EventMismatchError struct {
	Requested int
	Current   int
}

func (e *EventMismatchError) Error() string {
	return fmt.Sprintf("source holds event %d, requested event %d", e.Current, e.Requested)
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

// ErrCreateTable represents an error when creating an output table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}
