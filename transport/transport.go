package transport

import "fmt"

// Handle identifies one transport-level socket.
type Handle int64

// NoHandle is the zero Handle, held while no socket exists.
const NoHandle Handle = 0

func (h Handle) String() string {
	return fmt.Sprintf("socket#%d", int64(h))
}

// EventDriver receives the events a socket raises while it is live.
// Every event carries the handle it originated from.
type EventDriver interface {
	// OnData fires when a chunk of bytes arrives on h.
	OnData(h Handle, buf []byte)
	// OnError fires when h fails; code is a negative result code.
	OnError(h Handle, code int)
}

// Transport is an asynchronous socket capability.
//
// None of the operations block: each one completes by invoking done,
// possibly on another goroutine. Completions for one handle are invoked
// in the order the transport issues them.
type Transport interface {
	// SetEventDriver registers the receiver of OnData and OnError events.
	SetEventDriver(driver EventDriver)

	// Create allocates a new socket handle.
	Create(done func(h Handle))

	// Connect connects h to host:port. A negative result is a failure code.
	Connect(h Handle, host string, port int, done func(result int))

	// Send writes buf to h. A negative result is a failure code,
	// otherwise it is the number of bytes sent.
	Send(h Handle, buf []byte, done func(result int))

	// Disconnect shuts the connection of h down. It always succeeds.
	Disconnect(h Handle, done func())

	// Close releases h.
	Close(h Handle, done func())
}
