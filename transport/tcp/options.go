package tcp

import (
	"time"

	trans "github.com/emove/connector/transport"
)

type TCPOptions struct {
	Network         string
	Timeout         time.Duration
	Keepalive       bool
	KeepAlivePeriod time.Duration
	Linger          int
	NoDelay         bool
	// ReadBufferSize is the largest chunk delivered by a single OnData.
	ReadBufferSize int
}

// DefaultOptions returns a fresh copy of the default options.
func DefaultOptions() *TCPOptions {
	return &TCPOptions{
		Network: "tcp",
		// default connect timeout
		Timeout:         time.Second * 5,
		Keepalive:       true,
		KeepAlivePeriod: time.Minute,
		Linger:          -1,
		NoDelay:         true,
		ReadBufferSize:  4096,
	}
}

func WithNetwork(network string) trans.Option {
	return func(ops trans.Options) {
		if tcpOps, ok := ops.(*TCPOptions); ok {
			switch network {
			case "tcp", "tcp4", "tcp6":
				tcpOps.Network = network
			}
		}
	}
}

// WithTimeout sets the connect timeout, zero waits for the operating system.
func WithTimeout(d time.Duration) trans.Option {
	return func(ops trans.Options) {
		if tcpOps, ok := ops.(*TCPOptions); ok && d >= 0 {
			tcpOps.Timeout = d
		}
	}
}

func WithKeepalive(keepalive bool) trans.Option {
	return func(ops trans.Options) {
		if tcpOps, ok := ops.(*TCPOptions); ok {
			tcpOps.Keepalive = keepalive
		}
	}
}

func WithKeepalivePeriod(period time.Duration) trans.Option {
	return func(ops trans.Options) {
		if tcpOps, ok := ops.(*TCPOptions); ok && period > 0 {
			tcpOps.KeepAlivePeriod = period
		}
	}
}

func WithLinger(linger int) trans.Option {
	return func(ops trans.Options) {
		if tcpOps, ok := ops.(*TCPOptions); ok {
			tcpOps.Linger = linger
		}
	}
}

func WithNoDelay(noDelay bool) trans.Option {
	return func(ops trans.Options) {
		if tcpOps, ok := ops.(*TCPOptions); ok {
			tcpOps.NoDelay = noDelay
		}
	}
}

func WithReadBufferSize(size int) trans.Option {
	return func(ops trans.Options) {
		if tcpOps, ok := ops.(*TCPOptions); ok && size > 0 {
			tcpOps.ReadBufferSize = size
		}
	}
}
