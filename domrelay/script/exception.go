package script

// Exception is the runtime-native structured exception. It is the only error
// a callback entry point hands back to a binding, which rethrows it inside
// the runtime with Message as the exception text.
type Exception struct {
	Message string
	Cause   error
}

// Throw creates an Exception with no underlying cause.
func Throw(msg string) *Exception {
	return &Exception{Message: msg}
}

func (e *Exception) Error() string { return e.Message }

func (e *Exception) Unwrap() error { return e.Cause }
