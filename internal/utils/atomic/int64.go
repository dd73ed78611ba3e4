package atomic

import "sync/atomic"

// AtomicInt64 is an int64 counter safe for concurrent use.
type AtomicInt64 int64

// Inc adds one and returns the new value.
func (i *AtomicInt64) Inc() int64 {
	return atomic.AddInt64((*int64)(i), 1)
}

// Dec subtracts one and returns the new value.
func (i *AtomicInt64) Dec() int64 {
	return atomic.AddInt64((*int64)(i), -1)
}

func (i *AtomicInt64) Value() int64 {
	return atomic.LoadInt64((*int64)(i))
}
