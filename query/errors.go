package query

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPredicate reports a predicate name missing from the fixed
	// registry. Caught at compile time, never during matching.
	ErrUnknownPredicate = errors.New("unknown predicate")

	// ErrUnknownCapture reports a predicate argument referencing a capture
	// name its pattern never binds.
	ErrUnknownCapture = errors.New("predicate references unbound capture")

	// ErrDuplicateCapture reports the same capture name bound twice within
	// one pattern.
	ErrDuplicateCapture = errors.New("duplicate capture name in pattern")
)

// SyntaxError is a compile-time error in rule source. Offset is the byte
// position in the source where the problem was detected.
type SyntaxError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query: offset %d: %s: %v", e.Offset, e.Msg, e.Err)
	}
	return fmt.Sprintf("query: offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func syntaxErrf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func syntaxErr(offset int, err error, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...), Err: err}
}
