package dispatch

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotImplemented marks an operator with no defined semantics, or an
	// operand the operator cannot accept.
	ErrNotImplemented = errors.New("not implemented")
	ErrUnknownShape   = errors.New("shape is unknown")
)

// TypeError reports an operand of the wrong element type or rank.
type TypeError struct {
	Op  string
	Msg string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// UsageError reports an invalid combination of arguments.
type UsageError struct {
	Op  string
	Msg string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}
