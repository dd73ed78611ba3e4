// Package echo provides an in-memory transport.Transport that plays the
// remote peer itself: every buffer sent on a connected handle comes back
// as OnData. It backs dry runs of the connector CLI.
package echo

import (
	"sync"

	"github.com/emove/connector/internal/utils/recovery"
	"github.com/emove/connector/log"
	trans "github.com/emove/connector/transport"
)

type EchoOptions struct {
	// ChunkSize splits every echoed buffer into reads of at most this many
	// bytes, zero echoes each buffer in one read.
	ChunkSize int
}

// WithChunkSize sets EchoOptions.ChunkSize.
func WithChunkSize(n int) trans.Option {
	return func(ops trans.Options) {
		if echoOps, ok := ops.(*EchoOptions); ok && n >= 0 {
			echoOps.ChunkSize = n
		}
	}
}

// Transport echoes sends back to the sender. Completions and events are
// delivered in order on one goroutine, never on the caller's.
type Transport struct {
	ops *EchoOptions

	mu      sync.Mutex
	seq     trans.Handle
	sockets map[trans.Handle]bool
	driver  trans.EventDriver

	queue chan func()
	stop  chan struct{}
	once  sync.Once
}

var _ trans.Transport = (*Transport)(nil)

// New starts the delivery goroutine; Stop ends it.
func New(op ...trans.Option) *Transport {
	ops := &EchoOptions{}
	for _, o := range op {
		o(ops)
	}
	t := &Transport{
		ops:     ops,
		sockets: make(map[trans.Handle]bool),
		queue:   make(chan func(), 256),
		stop:    make(chan struct{}),
	}
	go t.deliver()
	return t
}

// Stop ends the delivery goroutine, pending completions are dropped.
func (t *Transport) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *Transport) SetEventDriver(driver trans.EventDriver) {
	t.mu.Lock()
	t.driver = driver
	t.mu.Unlock()
}

func (t *Transport) Create(done func(h trans.Handle)) {
	t.mu.Lock()
	t.seq++
	h := t.seq
	t.sockets[h] = false
	t.mu.Unlock()

	log.ForSocket(h).Debugw("msg", "created", "transport", "echo")
	t.post("create", func() { done(h) })
}

func (t *Transport) Connect(h trans.Handle, host string, port int, done func(result int)) {
	t.mu.Lock()
	up, ok := t.sockets[h]
	if ok && !up {
		t.sockets[h] = true
	}
	t.mu.Unlock()

	result := trans.ResultOK
	switch {
	case !ok:
		result = trans.ResultInvalidHandle
	case up:
		result = trans.ResultFailed
	}
	t.post("connect", func() { done(result) })
}

func (t *Transport) Send(h trans.Handle, buf []byte, done func(result int)) {
	t.mu.Lock()
	up := t.sockets[h]
	t.mu.Unlock()

	if !up {
		t.post("send", func() { done(trans.ResultSocketNotConnected) })
		return
	}

	data := append([]byte(nil), buf...)
	t.post("send", func() { done(len(data)) })
	for _, chunk := range t.split(data) {
		chunk := chunk
		t.post("OnData", func() {
			if d := t.eventDriver(); d != nil {
				d.OnData(h, chunk)
			}
		})
	}
}

func (t *Transport) Disconnect(h trans.Handle, done func()) {
	t.mu.Lock()
	if _, ok := t.sockets[h]; ok {
		t.sockets[h] = false
	}
	t.mu.Unlock()
	t.post("disconnect", done)
}

func (t *Transport) Close(h trans.Handle, done func()) {
	t.mu.Lock()
	delete(t.sockets, h)
	t.mu.Unlock()
	t.post("close", done)
}

// Live returns the number of handles not yet closed.
func (t *Transport) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sockets)
}

func (t *Transport) split(buf []byte) [][]byte {
	n := t.ops.ChunkSize
	if n <= 0 || len(buf) <= n {
		return [][]byte{buf}
	}
	chunks := make([][]byte, 0, (len(buf)+n-1)/n)
	for len(buf) > n {
		chunks = append(chunks, buf[:n])
		buf = buf[n:]
	}
	return append(chunks, buf)
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

func (t *Transport) post(op string, fn func()) {
	select {
	case t.queue <- func() { recovery.Guard(op, fn) }:
	case <-t.stop:
	}
}

func (t *Transport) eventDriver() trans.EventDriver {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.driver
}
