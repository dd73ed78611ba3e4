package connector

import "fmt"

// Status texts emitted through OnStatusChanged.
const (
	StatusConnecting     = "Connecting..."
	StatusConnected      = "Connected"
	StatusDisconnecting  = "Disconnecting..."
	StatusNotConnected   = "Not connected"
	StatusConnectFailed  = "Unable connect to remote address"
	StatusMessageSent    = "Message sent."
	StatusMessageNotSent = "Message not sent."
	StatusMalformedData  = "Malformed data received"
	StatusMissingPort    = "You must provide port number."
)

// Status is an advisory notification for the driving layer.
type Status struct {
	Message string
	IsError bool
	// Err carries the failure behind the status, if any.
	Err error
}

func (s Status) String() string {
	if s.IsError {
		return "error: " + s.Message
	}
	return s.Message
}

func socketErrorStatus(code int) string {
	return fmt.Sprintf("Socket error with code: %d", code)
}
