package recovery

import (
	"runtime/debug"

	"github.com/emove/connector/internal/errors"
	"github.com/emove/connector/log"
)

// Do runs fn and converts a panic into an error.
func Do(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("panic: %v\n stack: %s", errors.AsError(p), string(debug.Stack()))
		}
	}()

	return fn()
}

// Recover must be deferred; it passes a recovered panic to fn.
func Recover(fn func(err error)) {
	if p := recover(); p != nil {
		err := errors.New("panic error: %v\n stack: %s", errors.AsError(p), string(debug.Stack()))
		fn(err)
	}
}

// Guard runs fn and logs a panic instead of propagating it.
// It returns false when fn panicked.
func Guard(where string, fn func()) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorw("where", where, "panic", errors.AsError(p), "stack", string(debug.Stack()))
			ok = false
		}
	}()
	fn()
	return true
}
