package errors

import "fmt"

// New formats an error, the same as fmt.Errorf.
func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// AsError converts a recovered panic value to an error.
func AsError(err interface{}) error {
	switch e := err.(type) {
	case nil:
		return nil
	case error:
		return e
	case string:
		return fmt.Errorf("%s", e)
	default:
		return fmt.Errorf("%v", e)
	}
}
