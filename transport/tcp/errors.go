package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	trans "github.com/emove/connector/transport"
)

// classify maps a Go network error to a transport result code,
// fallback is used when nothing more specific matches.
func classify(err error, fallback int) int {
	if err == nil {
		return trans.ResultOK
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return trans.ResultSocketNotConnected
	case errors.Is(err, context.Canceled):
		return trans.ResultConnectionAborted
	case errors.Is(err, context.DeadlineExceeded):
		return trans.ResultTimedOut
	case errors.Is(err, syscall.ECONNRESET):
		return trans.ResultConnectionReset
	case errors.Is(err, syscall.ECONNREFUSED):
		return trans.ResultConnectionRefused
	case errors.Is(err, syscall.ECONNABORTED):
		return trans.ResultConnectionAborted
	case errors.Is(err, syscall.EPIPE):
		return trans.ResultConnectionClosed
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return trans.ResultAddressUnreachable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return trans.ResultNameNotResolved
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return trans.ResultTimedOut
	}
	return fallback
}
