package dispatch

import (
	"errors"

	"github.com/hazyhaar/inspector/domrelay/script"
)

const (
	internalPrefix  = "Error: internal exception: "
	internalGeneric = "Error: internal exception!"
)

// boundary runs fn and turns whatever it produces into a *script.Exception
// a binding can rethrow:
//
//   - a *script.Exception passes through unchanged;
//   - an ArgumentError becomes an exception carrying its message;
//   - any other error, or a panic with an error value, becomes an
//     "internal exception" carrying the error text;
//   - a panic with any other value becomes a generic internal exception.
func boundary(event string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = translatePanic(event, r)
		}
	}()
	return translate(event, fn())
}

func translate(event string, err error) error {
	if err == nil {
		return nil
	}
	var exc *script.Exception
	if errors.As(err, &exc) {
		return exc
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return &script.Exception{Message: argErr.Error(), Cause: argErr}
	}
	return &script.Exception{
		Message: internalPrefix + err.Error(),
		Cause:   &InternalError{Event: event, Cause: err},
	}
}

func translatePanic(event string, r any) error {
	if e, ok := r.(error); ok {
		return translate(event, e)
	}
	return &script.Exception{
		Message: internalGeneric,
		Cause:   &InternalError{Event: event, Value: r},
	}
}
