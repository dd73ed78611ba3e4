package connector

import (
	"errors"
	"fmt"

	"github.com/emove/connector/transport"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid address")
	// ErrNotIdle is returned by Connect while a connection exists.
	ErrNotIdle = errors.New("a connection already exists")
	// ErrNotConnected is returned by Send outside Connected and by Disconnect in Idle.
	ErrNotConnected = errors.New("not connected")
	// ErrClientNotRunning is returned before Run.
	ErrClientNotRunning = errors.New("client is not running")
	// ErrClientClosed is returned after Shutdown.
	ErrClientClosed = errors.New("client has been shut down")

	ErrConnectFailure = errors.New("unable to connect to the remote machine")
	ErrSendFailure    = errors.New("message not sent")
	ErrRemoteClosed   = errors.New("remote endpoint closed the port")
	ErrTransport      = errors.New("socket error")
)

// ValidationError reports a malformed connect address.
type ValidationError struct {
	Address string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Address, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConnectError is the failure of a transport connect.
type ConnectError struct {
	Address Address
	Code    int
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("unable to connect to %s: %s (%d)", e.Address, transport.ResultName(e.Code), e.Code)
}

func (e *ConnectError) Is(target error) bool {
	return target == ErrConnectFailure
}

// SendError is the failure of a transport send; the connection stays up.
type SendError struct {
	Handle transport.Handle
	Code   int
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: send failed: %s (%d)", e.Handle, transport.ResultName(e.Code), e.Code)
}

func (e *SendError) Is(target error) bool {
	return target == ErrSendFailure
}

// TransportError is an error event raised on a live connection.
type TransportError struct {
	Handle transport.Handle
	Code   int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Handle, transport.ResultName(e.Code), e.Code)
}

// RemoteClosed reports whether the peer closed the connection.
func (e *TransportError) RemoteClosed() bool {
	return e.Code == transport.ResultRemoteClosed
}

func (e *TransportError) Is(target error) bool {
	if e.RemoteClosed() {
		return target == ErrRemoteClosed
	}
	return target == ErrTransport
}
