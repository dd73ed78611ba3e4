package connector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/emove/connector/internal/utils/recovery"
	"github.com/emove/connector/log"
	_go "github.com/emove/connector/pkg/pool/go"
	"github.com/emove/connector/transport"
)

// client lifecycle
const (
	created int32 = iota
	running
	closed
)

// teardown reasons, decide the statuses emitted once the handle is closed
const (
	byUser = iota + 1
	byConnectFailure
	byRemoteClose
	byTransportError
)

// Client owns one logical TCP connection and drives its lifecycle.
//
// Every state mutation happens on a single event loop goroutine: lifecycle
// requests and transport completions are posted to it and handled one at
// a time, so the connection state needs no locks.
type Client struct {
	ops   *options
	trans transport.Transport

	state   int32
	events  chan interface{}
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// owned by the event loop
	conn      Connection
	reason    int
	failure   error
	aborted   bool
	releasing bool
	shutdown  chan error
	// bytes of a unit split across reads
	pending []byte
}

// NewClient returns a Client driving t. Call Run before issuing requests.
func NewClient(t transport.Transport, op ...Option) *Client {
	ops := defaultOptions()
	for _, o := range op {
		o.Apply(ops)
	}

	c := &Client{
		ops:     ops,
		trans:   t,
		events:  make(chan interface{}, ops.eventBuffer),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	t.SetEventDriver(&driver{c: c})
	return c
}

// Run starts the event loop.
func (c *Client) Run() {
	if !atomic.CompareAndSwapInt32(&c.state, created, running) {
		return
	}
	if !c.ops.disableGPool {
		_go.Setup(c.ops.poolCapacity)
	}
	go c.loop()
}

// Shutdown tears down a live connection, waits until it is released or
// ctx is done, then stops the event loop.
func (c *Client) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&c.state, running, closed) {
		atomic.StoreInt32(&c.state, closed)
		return nil
	}

	reply := make(chan error, 1)
	var err error
	if c.post(&shutdownRequest{reply: reply}) {
		select {
		case err = <-reply:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	// the goroutine pool is process wide and outlives the client
	c.once.Do(func() { close(c.quit) })
	<-c.stopped
	return err
}

// Connect starts connecting to addr, given as host:port.
//
// A malformed address fails with a *ValidationError before any transport
// call. Otherwise Connect returns once the socket creation is requested;
// the outcome arrives through the status hooks.
func (c *Client) Connect(addr string) error {
	remote, err := ParseAddress(addr)
	if err != nil {
		if atomic.LoadInt32(&c.state) == running {
			c.post(&statusEvent{st: Status{Message: err.(*ValidationError).Reason, IsError: true, Err: err}})
		}
		return err
	}
	return c.request(&connectRequest{addr: remote})
}

// Disconnect starts tearing the connection down. It is a no-op while
// already disconnecting and fails with ErrNotConnected in Idle.
func (c *Client) Disconnect() error {
	return c.request(&disconnectRequest{})
}

// Send encodes text and hands it to the transport. It is only valid while
// Connected. A failed delivery is reported through the status hooks and
// leaves the connection up.
func (c *Client) Send(text string) error {
	return c.request(&sendRequest{text: text})
}

// Connection returns a snapshot of the current connection.
func (c *Client) Connection() Connection {
	reply := make(chan Connection, 1)
	if atomic.LoadInt32(&c.state) != running || !c.post(&snapshotRequest{reply: reply}) {
		return Connection{}
	}
	select {
	case conn := <-reply:
		return conn
	case <-c.stopped:
		return Connection{}
	}
}

type requester interface {
	replyTo(ch chan error)
}

func (c *Client) request(req requester) error {
	switch atomic.LoadInt32(&c.state) {
	case created:
		return ErrClientNotRunning
	case closed:
		return ErrClientClosed
	}

	reply := make(chan error, 1)
	req.replyTo(reply)
	if !c.post(req) {
		return ErrClientClosed
	}
	select {
	case err := <-reply:
		return err
	case <-c.stopped:
		return ErrClientClosed
	}
}

func (c *Client) post(ev interface{}) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.quit:
		return false
	}
}

func (c *Client) loop() {
	defer close(c.stopped)
	for {
		select {
		case <-c.quit:
			return
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Client) handle(ev interface{}) {
	switch e := ev.(type) {
	case *connectRequest:
		e.reply <- c.onConnectRequest(e.addr)
	case *disconnectRequest:
		e.reply <- c.onDisconnectRequest()
	case *sendRequest:
		e.reply <- c.onSendRequest(e.text)
	case *snapshotRequest:
		e.reply <- c.conn
	case *shutdownRequest:
		c.onShutdownRequest(e.reply)
	case *statusEvent:
		c.status(e.st)
	case *createdEvent:
		c.onCreated(e.h)
	case *connectedEvent:
		c.onConnected(e.h, e.result)
	case *sentEvent:
		c.onSent(e.h, e.result)
	case *disconnectedEvent:
		c.onDisconnected(e.h)
	case *closedEvent:
		c.onClosed(e.h)
	case *dataEvent:
		c.onData(e.h, e.buf)
	case *errorEvent:
		c.onError(e.h, e.code)
	}
}

// ====================================== lifecycle requests ============================================ //

func (c *Client) onConnectRequest(addr Address) error {
	if c.conn.State != Idle {
		return ErrNotIdle
	}

	c.conn = Connection{State: Connecting, RemoteAddress: addr}
	c.aborted = false
	c.pending = nil
	c.transition()
	c.status(Status{Message: StatusConnecting})

	log.Infow("remote", addr, "msg", "connecting")
	c.trans.Create(func(h transport.Handle) {
		c.post(&createdEvent{h: h})
	})
	return nil
}

func (c *Client) onDisconnectRequest() error {
	switch c.conn.State {
	case Idle:
		return ErrNotConnected
	case Disconnecting:
		return nil
	case Connecting:
		if c.conn.ID == transport.NoHandle {
			// the socket does not exist yet, it is released as soon as it does
			c.aborted = true
			c.reason = byUser
			c.conn.State = Disconnecting
			c.transition()
			c.status(Status{Message: StatusDisconnecting})
			return nil
		}
	}
	c.teardown(byUser, true)
	return nil
}

func (c *Client) onSendRequest(text string) error {
	if c.conn.State != Connected {
		return ErrNotConnected
	}

	buf, err := c.ops.codec.Encode(text)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	h := c.conn.ID
	log.Debugw("socket", h, "bytes", len(buf), "msg", "sending")
	c.trans.Send(h, buf, func(result int) {
		c.post(&sentEvent{h: h, result: result})
	})
	return nil
}

func (c *Client) onShutdownRequest(reply chan error) {
	switch c.conn.State {
	case Idle:
		reply <- nil
		return
	case Connecting, Connected:
		if err := c.onDisconnectRequest(); err != nil {
			reply <- err
			return
		}
	}
	c.shutdown = reply
}

// ====================================== transport completions ============================================ //

func (c *Client) onCreated(h transport.Handle) {
	if c.conn.ID != transport.NoHandle || (c.conn.State != Connecting && !c.aborted) {
		log.Warnw("socket", h, "state", c.conn.State, "msg", "unexpected socket, closing it")
		c.trans.Close(h, func() {})
		return
	}

	c.conn.ID = h
	if c.aborted {
		c.aborted = false
		c.release(h)
		return
	}

	c.transition()
	addr := c.conn.RemoteAddress
	log.Debugw("socket", h, "remote", addr, "msg", "created")
	c.trans.Connect(h, addr.Host, addr.Port, func(result int) {
		c.post(&connectedEvent{h: h, result: result})
	})
}

func (c *Client) onConnected(h transport.Handle, result int) {
	if !c.current(h) || c.conn.State != Connecting {
		log.Debugw("socket", h, "state", c.conn.State, "code", result, "msg", "drop connect completion")
		return
	}

	if transport.Failed(result) {
		log.Warnw("socket", h, "remote", c.conn.RemoteAddress, "code", result, "msg", "connect failed")
		c.failure = &ConnectError{Address: c.conn.RemoteAddress, Code: result}
		c.teardown(byConnectFailure, false)
		return
	}

	c.conn.State = Connected
	log.Infow("socket", h, "remote", c.conn.RemoteAddress, "msg", "connected")
	c.transition()
	c.status(Status{Message: StatusConnected})
}

func (c *Client) onSent(h transport.Handle, result int) {
	if !c.current(h) || c.conn.State != Connected {
		log.Debugw("socket", h, "code", result, "msg", "drop send completion")
		return
	}

	if transport.Failed(result) {
		log.Warnw("socket", h, "code", result, "msg", "send failed")
		c.status(Status{Message: StatusMessageNotSent, IsError: true, Err: &SendError{Handle: h, Code: result}})
		return
	}
	c.status(Status{Message: StatusMessageSent})
}

func (c *Client) onDisconnected(h transport.Handle) {
	if !c.current(h) || c.conn.State != Disconnecting {
		return
	}
	c.release(h)
}

func (c *Client) onClosed(h transport.Handle) {
	if !c.current(h) {
		return
	}
	c.reset()
}

// reset clears the connection back to Idle and emits the statuses of the
// teardown that led there.
func (c *Client) reset() {
	h, reason, failure := c.conn.ID, c.reason, c.failure
	c.conn = Connection{}
	c.reason, c.failure, c.releasing = 0, nil, false
	c.pending = nil
	log.Infow("socket", h, "msg", "released")
	c.transition()

	switch reason {
	case byConnectFailure:
		c.status(Status{Message: StatusConnectFailed, IsError: true, Err: failure})
	case byRemoteClose:
		c.status(Status{Message: StatusNotConnected, Err: failure})
	case byTransportError:
		c.status(Status{Message: StatusNotConnected})
		code := 0
		if te, ok := failure.(*TransportError); ok {
			code = te.Code
		}
		c.status(Status{Message: socketErrorStatus(code), IsError: true, Err: failure})
	default:
		c.status(Status{Message: StatusNotConnected})
	}

	if c.shutdown != nil {
		c.shutdown <- nil
		c.shutdown = nil
	}
}

// ====================================== transport events ============================================ //

func (c *Client) onData(h transport.Handle, buf []byte) {
	if !c.current(h) || c.conn.State != Connected {
		return
	}

	// a read may end in the middle of a unit, its head waits for the next read
	if len(c.pending) > 0 {
		buf = append(append(make([]byte, 0, len(c.pending)+len(buf)), c.pending...), buf...)
		c.pending = nil
	}
	n := len(buf) - len(buf)%c.ops.codec.UnitWidth()
	if n < len(buf) {
		c.pending = append([]byte(nil), buf[n:]...)
	}
	if n == 0 {
		return
	}

	text, err := c.ops.codec.Decode(buf[:n])
	if err != nil {
		log.Warnw("socket", h, "bytes", n, "err", err)
		c.status(Status{Message: StatusMalformedData, IsError: true, Err: err})
		return
	}

	for _, fn := range c.ops.onData {
		fn := fn
		recovery.Guard("OnDataReceived", func() { fn(text) })
	}
}

func (c *Client) onError(h transport.Handle, code int) {
	if !c.current(h) || c.conn.State != Connected {
		return
	}

	c.failure = &TransportError{Handle: h, Code: code}
	if code == transport.ResultRemoteClosed {
		// the peer already closed the port, a disconnect would fail as well
		log.Infow("socket", h, "code", code, "msg", "port is closed")
		c.teardown(byRemoteClose, false)
		return
	}

	log.Errorw("socket", h, "code", code, "msg", "socket error")
	c.teardown(byTransportError, true)
}

// ====================================== internal functions ============================================ //

// current reports whether h is the handle of the current connection.
func (c *Client) current(h transport.Handle) bool {
	return h != transport.NoHandle && h == c.conn.ID
}

// teardown releases the handle. Without the handshake the handle is closed
// and the connection goes straight to Idle, any later event for it is
// dropped. With it the connection waits in Disconnecting until the
// disconnect and close complete.
func (c *Client) teardown(reason int, handshake bool) {
	h := c.conn.ID
	c.reason = reason

	if !handshake {
		c.release(h)
		c.reset()
		return
	}

	c.conn.State = Disconnecting
	c.transition()
	c.status(Status{Message: StatusDisconnecting})
	c.trans.Disconnect(h, func() {
		c.post(&disconnectedEvent{h: h})
	})
}

// release closes h exactly once.
func (c *Client) release(h transport.Handle) {
	if c.releasing {
		return
	}
	c.releasing = true
	c.trans.Close(h, func() {
		c.post(&closedEvent{h: h})
	})
}

func (c *Client) transition() {
	log.Debugw("socket", c.conn.ID, "state", c.conn.State)
	conn := c.conn
	for _, fn := range c.ops.onState {
		fn := fn
		recovery.Guard("OnStateChanged", func() { fn(conn) })
	}
}

func (c *Client) status(st Status) {
	for _, fn := range c.ops.onStatus {
		fn := fn
		recovery.Guard("OnStatusChanged", func() { fn(st) })
	}
}
