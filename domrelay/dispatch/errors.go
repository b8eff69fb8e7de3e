package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArguments matches every ArgumentError.
	ErrInvalidArguments = errors.New("dispatch: invalid arguments")
	// ErrInternal matches every InternalError.
	ErrInternal = errors.New("dispatch: internal failure")
	// ErrUnknownEvent is returned by Call for an event name with no handler.
	ErrUnknownEvent = errors.New("dispatch: unknown event")
)

// ArgumentError is returned when a callback receives the wrong arity or a
// wrong-typed argument. Nothing has been sent when it is returned.
type ArgumentError struct {
	Event     string // callback name, e.g. "ChildNodeInserted"
	Signature string // e.g. "nodeId: number, name: string"
	Detail    string // optional, e.g. which identifier was out of range
}

func (e *ArgumentError) Error() string {
	msg := fmt.Sprintf("Calling %s with invalid arguments. Required params: %s", e.Event, e.Signature)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArguments }

// InternalError wraps any unexpected failure raised while handling a callback,
// including panics. Value holds a recovered panic value that was not an error.
type InternalError struct {
	Event string
	Cause error
	Value any
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dispatch: %s: internal failure: %v", e.Event, e.Cause)
	}
	return fmt.Sprintf("dispatch: %s: internal failure: %v", e.Event, e.Value)
}

func (e *InternalError) Unwrap() error { return e.Cause }

func (e *InternalError) Is(target error) bool { return target == ErrInternal }
