package tcp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/emove/connector/log"
	trans "github.com/emove/connector/transport"
)

// socket states
const (
	created int32 = iota
	connecting
	connected
	disconnected
)

type sendRequest struct {
	buf  []byte
	done func(result int)
}

// socket is the transport side of one Handle.
type socket struct {
	handle trans.Handle
	ctx    context.Context
	cancel context.CancelFunc
	state  int32
	logger log.FullLogger

	mu    sync.Mutex
	conn  net.Conn
	queue []*sendRequest
	wake  chan struct{}
}

func newSocket(h trans.Handle) *socket {
	ctx, cancel := context.WithCancel(context.Background())
	return &socket{
		handle: h,
		ctx:    ctx,
		cancel: cancel,
		state:  created,
		logger: log.ForSocket(h),
		wake:   make(chan struct{}, 1),
	}
}

// attach binds a dialed connection, it fails when the socket was
// disconnected while dialing.
func (s *socket) attach(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !atomic.CompareAndSwapInt32(&s.state, connecting, connected) {
		return false
	}
	s.conn = conn
	return true
}

func (s *socket) isConnected() bool {
	return atomic.LoadInt32(&s.state) == connected
}

func (s *socket) closedLocally() bool {
	return atomic.LoadInt32(&s.state) == disconnected
}

func (s *socket) enqueue(req *sendRequest) bool {
	s.mu.Lock()
	if atomic.LoadInt32(&s.state) != connected {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, req)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *socket) take() []*sendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

// disconnect closes the connection once and returns the sends that never
// reached the wire.
func (s *socket) disconnect() []*sendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if atomic.SwapInt32(&s.state, disconnected) == disconnected {
		return nil
	}
	s.cancel()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	q := s.queue
	s.queue = nil
	return q
}

// RemoteAddr returns the remote address, nil until connected.
func (s *socket) RemoteAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.RemoteAddr()
}
