// Package qerr defines the errors reported while turning a request into SQL.
//
// Every error is local to the request that produced it. Callers match the
// kind with errors.Is and read the wrapped message for table, field and
// request names.
package qerr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation: the request name matches no recognized pattern.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrArgumentMismatch: the fields named by a By... suffix disagree with the supplied arguments.
	ErrArgumentMismatch = errors.New("argument mismatch")
	// ErrEmptyCriteria: an operation requiring a filter received none.
	ErrEmptyCriteria = errors.New("empty criteria")
	// ErrMissingKeyValue: an update record lacks a value for a key field.
	ErrMissingKeyValue = errors.New("missing key value")
	// ErrUnsupportedOperation: the table or statement cannot support the requested operation.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	ErrUnknownTable      = errors.New("unknown table")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrEmptyRecord       = errors.New("empty record")
	ErrInvalidExpression = errors.New("invalid expression")
)

// SchemaResolutionError reports two tables with no usable foreign-key path.
type SchemaResolutionError struct {
	Left   string
	Right  string
	Reason string
}

func (e *SchemaResolutionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("could not join %q and %q: %s", e.Left, e.Right, e.Reason)
	}
	return fmt.Sprintf("could not join %q and %q", e.Left, e.Right)
}
