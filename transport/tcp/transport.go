package tcp

import (
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	catomic "github.com/emove/connector/internal/utils/atomic"
	"github.com/emove/connector/internal/utils/recovery"
	_go "github.com/emove/connector/pkg/pool/go"
	trans "github.com/emove/connector/transport"
)

type transport struct {
	ops *TCPOptions

	seq  catomic.AtomicInt64
	live catomic.AtomicInt64

	mu      sync.RWMutex
	sockets map[trans.Handle]*socket
	driver  atomic.Value
}

var _ trans.Transport = (*transport)(nil)

// New returns a Transport backed by net TCP sockets.
func New(op ...trans.Option) trans.Transport {
	ops := DefaultOptions()
	for _, o := range op {
		o(ops)
	}

	return &transport{
		ops:     ops,
		sockets: make(map[trans.Handle]*socket),
	}
}

func (t *transport) SetEventDriver(driver trans.EventDriver) {
	t.driver.Store(&driver)
}

func (t *transport) Create(done func(h trans.Handle)) {
	h := trans.Handle(t.seq.Inc())
	s := newSocket(h)
	t.mu.Lock()
	t.sockets[h] = s
	t.mu.Unlock()
	t.live.Inc()

	s.logger.Debugw("msg", "created")
	t.complete("create", func() { done(h) })
}

func (t *transport) Connect(h trans.Handle, host string, port int, done func(result int)) {
	s := t.get(h)
	if s == nil {
		t.complete("connect", func() { done(trans.ResultInvalidHandle) })
		return
	}
	if !atomic.CompareAndSwapInt32(&s.state, created, connecting) {
		t.complete("connect", func() { done(trans.ResultFailed) })
		return
	}

	_go.Submit(func() {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		dialer := net.Dialer{Timeout: t.ops.Timeout}
		conn, err := dialer.DialContext(s.ctx, t.ops.Network, addr)
		if err != nil {
			code := classify(err, trans.ResultConnectionFailed)
			s.logger.Debugw("remote", addr, "code", code, "err", err)
			t.finish("connect", done, code)
			return
		}

		if tc, ok := conn.(*net.TCPConn); ok {
			if err = applyOptions(tc, t.ops); err != nil {
				s.logger.Errorf("config tcp connection err: %v", err)
				_ = conn.Close()
				t.finish("connect", done, trans.ResultFailed)
				return
			}
		}

		if !s.attach(conn) {
			_ = conn.Close()
			t.finish("connect", done, trans.ResultConnectionAborted)
			return
		}

		s.logger.Debugw("remote", addr, "msg", "connected")
		// the completion goes out before the first byte is read
		t.finish("connect", done, trans.ResultOK)

		_go.Submit(func() { t.writeLoop(s) })
		t.readLoop(s)
	})
}

func (t *transport) Send(h trans.Handle, buf []byte, done func(result int)) {
	s := t.get(h)
	if s == nil || !s.enqueue(&sendRequest{buf: buf, done: done}) {
		t.complete("send", func() { done(trans.ResultSocketNotConnected) })
	}
}

func (t *transport) Disconnect(h trans.Handle, done func()) {
	if s := t.get(h); s != nil {
		t.fail(s.disconnect())
		s.logger.Debugw("msg", "disconnected")
	}
	t.complete("disconnect", done)
}

func (t *transport) Close(h trans.Handle, done func()) {
	t.mu.Lock()
	s, ok := t.sockets[h]
	delete(t.sockets, h)
	t.mu.Unlock()

	if ok {
		t.fail(s.disconnect())
		t.live.Dec()
		s.logger.Debugw("msg", "closed")
	}
	t.complete("close", done)
}

// Live returns the number of handles not yet closed.
func (t *transport) Live() int64 {
	return t.live.Value()
}

func (t *transport) get(h trans.Handle) *socket {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sockets[h]
}

func (t *transport) eventDriver() trans.EventDriver {
	d, _ := t.driver.Load().(*trans.EventDriver)
	if d == nil {
		return nil
	}
	return *d
}

func (t *transport) readLoop(s *socket) {
	defer recovery.Recover(func(err error) {
		s.logger.Errorw("msg", "read loop panic", "err", err)
	})

	buf := make([]byte, t.ops.ReadBufferSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if d := t.eventDriver(); d != nil {
				recovery.Guard("OnData", func() { d.OnData(s.handle, data) })
			}
		}
		if err != nil {
			if s.closedLocally() {
				return
			}
			code := classify(err, trans.ResultFailed)
			s.logger.Debugw("code", code, "err", err)
			if d := t.eventDriver(); d != nil {
				recovery.Guard("OnError", func() { d.OnError(s.handle, code) })
			}
			return
		}
	}
}

func (t *transport) writeLoop(s *socket) {
	for {
		select {
		case <-s.ctx.Done():
			t.fail(s.take())
			return
		case <-s.wake:
		}

		for _, req := range s.take() {
			n, err := s.conn.Write(req.buf)
			if err != nil {
				code := classify(err, trans.ResultFailed)
				if s.closedLocally() {
					code = trans.ResultSocketNotConnected
				}
				t.finish("send", req.done, code)
				continue
			}
			t.finish("send", req.done, n)
		}
	}
}

// fail completes sends that will never be written.
func (t *transport) fail(reqs []*sendRequest) {
	if len(reqs) == 0 {
		return
	}
	_go.Submit(func() {
		for _, req := range reqs {
			t.finish("send", req.done, trans.ResultSocketNotConnected)
		}
	})
}

func (t *transport) finish(op string, done func(int), result int) {
	recovery.Guard(op, func() { done(result) })
}

// complete invokes a completion off the caller's goroutine.
func (t *transport) complete(op string, fn func()) {
	_go.Submit(func() { recovery.Guard(op, fn) })
}

func applyOptions(con *net.TCPConn, ops *TCPOptions) error {

	if err := con.SetKeepAlive(ops.Keepalive); nil != err {
		return err
	}

	if ops.Keepalive {
		if err := con.SetKeepAlivePeriod(ops.KeepAlivePeriod); nil != err {
			return err
		}
	}

	if err := con.SetLinger(ops.Linger); nil != err {
		return err
	}

	if err := con.SetNoDelay(ops.NoDelay); nil != err {
		return err
	}

	return nil
}
