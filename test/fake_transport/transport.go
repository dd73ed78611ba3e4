// Package fake_transport provides an in-memory transport.Transport that
// records every call and lets the caller script completions and events.
package fake_transport

import (
	"sync"

	"github.com/emove/connector/transport"
)

// Op names a recorded Transport call.
type Op string

const (
	OpCreate     Op = "create"
	OpConnect    Op = "connect"
	OpSend       Op = "send"
	OpDisconnect Op = "disconnect"
	OpClose      Op = "close"
)

// Call is one recorded Transport call.
type Call struct {
	Op     Op
	Handle transport.Handle
	Host   string
	Port   int
	Buf    []byte
}

type Option func(t *Transport)

// ConnectResult sets the result every Connect completes with.
func ConnectResult(code int) Option {
	return func(t *Transport) {
		t.connectResult = code
	}
}

// SendResult sets the result every Send completes with; zero reports the buffer length.
func SendResult(code int) Option {
	return func(t *Transport) {
		t.sendResult = code
	}
}

// HoldCreate keeps Create completions pending until ReleaseCreate.
func HoldCreate() Option {
	return func(t *Transport) {
		t.holdCreate = true
	}
}

// HoldConnect keeps Connect completions pending until ReleaseConnect.
func HoldConnect() Option {
	return func(t *Transport) {
		t.holdConnect = true
	}
}

// Echo delivers every sent buffer back as an OnData event.
func Echo() Option {
	return func(t *Transport) {
		t.echo = true
	}
}

// Transport is a fake transport. Completions and events are delivered
// in order on a single goroutine, never on the caller's.
type Transport struct {
	mu     sync.Mutex
	calls  []Call
	driver transport.EventDriver
	last   transport.Handle

	connectResult int
	sendResult    int
	holdCreate    bool
	holdConnect   bool
	echo          bool

	pendingCreate  []func()
	pendingConnect []func(result int)

	queue chan func()
	stop  chan struct{}
	once  sync.Once
}

var _ transport.Transport = (*Transport)(nil)

func New(op ...Option) *Transport {
	t := &Transport{
		queue: make(chan func(), 1024),
		stop:  make(chan struct{}),
	}
	for _, o := range op {
		o(t)
	}
	go t.deliver()
	return t
}

// Stop ends the delivery goroutine.
func (t *Transport) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *Transport) deliver() {
	for {
		select {
		case <-t.stop:
			return
		case fn := <-t.queue:
			fn()
		}
	}
}

func (t *Transport) post(fn func()) {
	select {
	case t.queue <- fn:
	case <-t.stop:
	}
}

func (t *Transport) record(c Call) {
	t.mu.Lock()
	t.calls = append(t.calls, c)
	t.mu.Unlock()
}

func (t *Transport) SetEventDriver(driver transport.EventDriver) {
	t.mu.Lock()
	t.driver = driver
	t.mu.Unlock()
}

func (t *Transport) Create(done func(h transport.Handle)) {
	t.mu.Lock()
	t.last++
	h := t.last
	t.calls = append(t.calls, Call{Op: OpCreate, Handle: h})
	if t.holdCreate {
		t.pendingCreate = append(t.pendingCreate, func() { done(h) })
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	t.post(func() { done(h) })
}

func (t *Transport) Connect(h transport.Handle, host string, port int, done func(result int)) {
	t.mu.Lock()
	t.calls = append(t.calls, Call{Op: OpConnect, Handle: h, Host: host, Port: port})
	if t.holdConnect {
		t.pendingConnect = append(t.pendingConnect, done)
		t.mu.Unlock()
		return
	}
	result := t.connectResult
	t.mu.Unlock()
	t.post(func() { done(result) })
}

func (t *Transport) Send(h transport.Handle, buf []byte, done func(result int)) {
	cp := append([]byte(nil), buf...)
	t.record(Call{Op: OpSend, Handle: h, Buf: cp})

	t.mu.Lock()
	result := t.sendResult
	echo := t.echo
	t.mu.Unlock()
	if result == 0 {
		result = len(buf)
	}
	t.post(func() { done(result) })
	if echo && result >= 0 {
		t.Data(h, cp)
	}
}

func (t *Transport) Disconnect(h transport.Handle, done func()) {
	t.record(Call{Op: OpDisconnect, Handle: h})
	t.post(done)
}

func (t *Transport) Close(h transport.Handle, done func()) {
	t.record(Call{Op: OpClose, Handle: h})
	t.post(done)
}

// Data raises an OnData event for h.
func (t *Transport) Data(h transport.Handle, buf []byte) {
	t.post(func() {
		if d := t.eventDriver(); d != nil {
			d.OnData(h, buf)
		}
	})
}

// Error raises an OnError event for h.
func (t *Transport) Error(h transport.Handle, code int) {
	t.post(func() {
		if d := t.eventDriver(); d != nil {
			d.OnError(h, code)
		}
	})
}

// ReleaseCreate completes the oldest held Create. It reports false when none is held.
func (t *Transport) ReleaseCreate() bool {
	t.mu.Lock()
	if len(t.pendingCreate) == 0 {
		t.mu.Unlock()
		return false
	}
	fn := t.pendingCreate[0]
	t.pendingCreate = t.pendingCreate[1:]
	t.mu.Unlock()
	t.post(fn)
	return true
}

// ReleaseConnect completes the oldest held Connect with result.
// It reports false when none is held.
func (t *Transport) ReleaseConnect(result int) bool {
	t.mu.Lock()
	if len(t.pendingConnect) == 0 {
		t.mu.Unlock()
		return false
	}
	done := t.pendingConnect[0]
	t.pendingConnect = t.pendingConnect[1:]
	t.mu.Unlock()
	t.post(func() { done(result) })
	return true
}

// SetSendResult changes the result of later sends.
func (t *Transport) SetSendResult(code int) {
	t.mu.Lock()
	t.sendResult = code
	t.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// Ops returns the recorded call names in order.
func (t *Transport) Ops() []Op {
	t.mu.Lock()
	defer t.mu.Unlock()
	ops := make([]Op, 0, len(t.calls))
	for _, c := range t.calls {
		ops = append(ops, c.Op)
	}
	return ops
}

// Count returns how many times op was called.
func (t *Transport) Count(op Op) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// LastHandle returns the most recently created handle.
func (t *Transport) LastHandle() transport.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *Transport) eventDriver() transport.EventDriver {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.driver
}
