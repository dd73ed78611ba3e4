package fake_transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emove/connector/transport"
)

type driver struct {
	data chan []byte
	errs chan int
}

func (d *driver) OnData(_ transport.Handle, buf []byte) { d.data <- buf }
func (d *driver) OnError(_ transport.Handle, code int)  { d.errs <- code }

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

func TestTransport_RecordsAndCompletes(t *testing.T) {
	tr := New(Echo())
	defer tr.Stop()
	d := &driver{data: make(chan []byte, 1), errs: make(chan int, 1)}
	tr.SetEventDriver(d)

	handles := make(chan transport.Handle, 1)
	tr.Create(func(h transport.Handle) { handles <- h })
	h := recv(t, handles)
	assert.Equal(t, tr.LastHandle(), h)

	results := make(chan int, 2)
	tr.Connect(h, "host", 1, func(r int) { results <- r })
	assert.Equal(t, transport.ResultOK, recv(t, results))

	tr.Send(h, []byte{0, 'a'}, func(r int) { results <- r })
	assert.Equal(t, 2, recv(t, results))
	assert.Equal(t, []byte{0, 'a'}, recv(t, d.data))

	tr.Error(h, transport.ResultRemoteClosed)
	assert.Equal(t, transport.ResultRemoteClosed, recv(t, d.errs))

	assert.Equal(t, []Op{OpCreate, OpConnect, OpSend}, tr.Ops())
	calls := tr.Calls()
	assert.Equal(t, "host", calls[1].Host)
	assert.Equal(t, 1, calls[1].Port)
}

func TestTransport_Hold(t *testing.T) {
	tr := New(HoldCreate(), HoldConnect())
	defer tr.Stop()

	handles := make(chan transport.Handle, 1)
	tr.Create(func(h transport.Handle) { handles <- h })
	assert.Empty(t, handles)
	require.True(t, tr.ReleaseCreate())
	h := recv(t, handles)
	assert.False(t, tr.ReleaseCreate())

	results := make(chan int, 1)
	tr.Connect(h, "host", 1, func(r int) { results <- r })
	require.True(t, tr.ReleaseConnect(transport.ResultConnectionRefused))
	assert.Equal(t, transport.ResultConnectionRefused, recv(t, results))
}

func TestTransport_SendResult(t *testing.T) {
	tr := New(SendResult(transport.ResultFailed))
	defer tr.Stop()

	results := make(chan int, 2)
	tr.Send(1, []byte{1}, func(r int) { results <- r })
	assert.Equal(t, transport.ResultFailed, recv(t, results))

	tr.SetSendResult(0)
	tr.Send(1, []byte{1, 2}, func(r int) { results <- r })
	assert.Equal(t, 2, recv(t, results))
	assert.Equal(t, 2, tr.Count(OpSend))
}
