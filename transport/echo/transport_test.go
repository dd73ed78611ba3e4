package echo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trans "github.com/emove/connector/transport"
)

type driver struct {
	data chan []byte
}

func (d *driver) OnData(_ trans.Handle, buf []byte) { d.data <- buf }
func (d *driver) OnError(trans.Handle, int)          {}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("nothing delivered")
	}
	var zero T
	return zero
}

func open(t *testing.T, tr *Transport) trans.Handle {
	t.Helper()
	handles := make(chan trans.Handle, 1)
	tr.Create(func(h trans.Handle) { handles <- h })
	h := recv(t, handles)

	results := make(chan int, 1)
	tr.Connect(h, "10.0.0.5", 9000, func(r int) { results <- r })
	require.Equal(t, trans.ResultOK, recv(t, results))
	return h
}

func TestTransport_Echo(t *testing.T) {
	tr := New()
	defer tr.Stop()
	d := &driver{data: make(chan []byte, 4)}
	tr.SetEventDriver(d)

	h := open(t, tr)
	assert.Equal(t, 1, tr.Live())

	results := make(chan int, 1)
	buf := []byte{0, 'h', 0, 'i'}
	tr.Send(h, buf, func(r int) { results <- r })
	buf[1] = 'x'
	assert.Equal(t, 4, recv(t, results))
	assert.Equal(t, []byte{0, 'h', 0, 'i'}, recv(t, d.data))

	done := make(chan struct{}, 2)
	tr.Disconnect(h, func() { done <- struct{}{} })
	recv(t, done)
	tr.Send(h, buf, func(r int) { results <- r })
	assert.Equal(t, trans.ResultSocketNotConnected, recv(t, results))
	assert.Empty(t, d.data)

	tr.Close(h, func() { done <- struct{}{} })
	recv(t, done)
	assert.Equal(t, 0, tr.Live())
}

func TestTransport_ChunkSize(t *testing.T) {
	tr := New(WithChunkSize(3))
	defer tr.Stop()
	d := &driver{data: make(chan []byte, 4)}
	tr.SetEventDriver(d)

	h := open(t, tr)
	results := make(chan int, 1)
	tr.Send(h, []byte{0, 'h', 0, 'i', 0, '!', 0}, func(r int) { results <- r })
	assert.Equal(t, 7, recv(t, results))

	assert.Equal(t, []byte{0, 'h', 0}, recv(t, d.data))
	assert.Equal(t, []byte{'i', 0, '!'}, recv(t, d.data))
	assert.Equal(t, []byte{0}, recv(t, d.data))
}

func TestTransport_BadHandle(t *testing.T) {
	tr := New()
	defer tr.Stop()

	results := make(chan int, 2)
	tr.Connect(42, "host", 1, func(r int) { results <- r })
	assert.Equal(t, trans.ResultInvalidHandle, recv(t, results))

	h := open(t, tr)
	tr.Connect(h, "host", 1, func(r int) { results <- r })
	assert.Equal(t, trans.ResultFailed, recv(t, results))
}
