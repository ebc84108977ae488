package eval

import "errors"

// Runtime errors. Evaluation stops at the first one and propagates it
// unchanged, so callers can match with errors.Is.
var (
	// ErrVoid reports an expression with no value, such as an empty block.
	ErrVoid = errors.New("no value")

	// ErrTypes reports an operator applied to operands it is not defined
	// for.
	ErrTypes = errors.New("type mismatch")

	// ErrKeyNotFound reports a dot lookup that missed.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnbound reports an identifier not bound in the consulted chain.
	ErrUnbound = errors.New("unbound identifier")

	// ErrMismatch reports a pattern that does not match the bound value.
	ErrMismatch = errors.New("pattern mismatch")

	// ErrDivideByZero reports integer division or remainder by zero.
	ErrDivideByZero = errors.New("division by zero")
)
