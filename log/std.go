package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

var _ Logger = (*stdLogger)(nil)

type stdLogger struct {
	w    io.Writer
	mu   sync.Mutex
	pool *sync.Pool
}

// NewStdLogger new a logger with writer.
// Every entry is written as a single line: LEVEL key=value key=value.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{
		w: w,
		pool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// Log print the kv pairs log.
func (l *stdLogger) Log(level Level, kvs ...interface{}) {
	if len(kvs) == 0 {
		return
	}
	if len(kvs)&1 == 1 {
		kvs = append(kvs, "KEYVALS UNPAIRED")
	}

	buf := l.pool.Get().(*bytes.Buffer)
	buf.WriteString(level.String())
	for i := 0; i < len(kvs); i += 2 {
		_, _ = fmt.Fprintf(buf, " %s=%v", kvs[i], kvs[i+1])
	}
	buf.WriteByte('\n')

	l.mu.Lock()
	_, _ = l.w.Write(buf.Bytes())
	l.mu.Unlock()

	buf.Reset()
	l.pool.Put(buf)
}
