package connector

import (
	"github.com/emove/connector/transport"
)

type connectRequest struct {
	addr  Address
	reply chan error
}

func (r *connectRequest) replyTo(ch chan error) { r.reply = ch }

type disconnectRequest struct {
	reply chan error
}

func (r *disconnectRequest) replyTo(ch chan error) { r.reply = ch }

type sendRequest struct {
	text  string
	reply chan error
}

func (r *sendRequest) replyTo(ch chan error) { r.reply = ch }

type snapshotRequest struct {
	reply chan Connection
}

type shutdownRequest struct {
	reply chan error
}

type statusEvent struct {
	st Status
}

type createdEvent struct {
	h transport.Handle
}

type connectedEvent struct {
	h      transport.Handle
	result int
}

type sentEvent struct {
	h      transport.Handle
	result int
}

type disconnectedEvent struct {
	h transport.Handle
}

type closedEvent struct {
	h transport.Handle
}

type dataEvent struct {
	h   transport.Handle
	buf []byte
}

type errorEvent struct {
	h    transport.Handle
	code int
}

// driver forwards transport events onto the client event loop.
type driver struct {
	c *Client
}

func (d *driver) OnData(h transport.Handle, buf []byte) {
	d.c.post(&dataEvent{h: h, buf: buf})
}

func (d *driver) OnError(h transport.Handle, code int) {
	d.c.post(&errorEvent{h: h, code: code})
}
