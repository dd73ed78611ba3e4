package connector

import (
	"github.com/emove/connector/codec"
	"github.com/emove/connector/codec/payload"
)

type (
	// OnStatusChanged is a hook invoked on every status notification.
	OnStatusChanged func(st Status)
	// OnDataReceived is a hook invoked with every decoded payload.
	OnDataReceived func(text string)
	// OnStateChanged is a hook invoked after every state transition.
	// A user disconnect or a transport error passes through Disconnecting,
	// a failed connect or a remote close goes straight to Idle.
	OnStateChanged func(conn Connection)
)

type options struct {
	codec       codec.PayloadCodec
	eventBuffer int

	onStatus []OnStatusChanged
	onData   []OnDataReceived
	onState  []OnStateChanged

	disableGPool bool
	poolCapacity int
}

func defaultOptions() *options {
	return &options{
		codec:       payload.NewUnit16Codec(),
		eventBuffer: 256,
	}
}

type Option interface {
	Apply(*options)
}

type clientOption struct {
	f func(ops *options)
}

func newOption(f func(ops *options)) Option {
	return &clientOption{
		f: f,
	}
}

func (fco *clientOption) Apply(co *options) {
	fco.f(co)
}

// WithPayloadCodec sets the codec used on both the send and receive boundary.
func WithPayloadCodec(c codec.PayloadCodec) Option {
	return newOption(func(ops *options) {
		if c != nil {
			ops.codec = c
		}
	})
}

func WithOnStatusChanged(onStatus ...OnStatusChanged) Option {
	return newOption(func(ops *options) {
		ops.onStatus = append(ops.onStatus, onStatus...)
	})
}

func WithOnDataReceived(onData ...OnDataReceived) Option {
	return newOption(func(ops *options) {
		ops.onData = append(ops.onData, onData...)
	})
}

func WithOnStateChanged(onState ...OnStateChanged) Option {
	return newOption(func(ops *options) {
		ops.onState = append(ops.onState, onState...)
	})
}

// WithEventBuffer sets how many transport events may queue for the event loop.
func WithEventBuffer(size int) Option {
	return newOption(func(ops *options) {
		if size > 0 {
			ops.eventBuffer = size
		}
	})
}

// DisableGoPool keeps the client off the process goroutine pool.
func DisableGoPool() Option {
	return newOption(func(ops *options) {
		ops.disableGPool = true
	})
}

// MaxGoPoolCapacity sets the capacity of the process goroutine pool. The pool
// is shared by every client and transport, only the first client to start it
// decides its capacity.
func MaxGoPoolCapacity(size int) Option {
	return newOption(func(ops *options) {
		if size > 0 {
			ops.poolCapacity = size
		}
	})
}
