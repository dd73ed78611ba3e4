package log

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
)

var (
	ErrKvsNotInPaired = errors.New("kvs must appear in pairs")
	ErrContextIsNil   = errors.New("context must be non-nil")
)

var (
	defaultLogger, _ = With(NewStdLogger(log.Writer()), "ts", DefaultTimestamp, "caller", DefaultCaller)
	DefaultMsgKey    = "msg"
)

// Logger defines logger interface
// inspired by https://github.com/go-kratos/kratos/blob/main/log
type Logger interface {
	Log(level Level, kvs ...interface{})
}

// FullLogger is a Logger with leveled helpers.
type FullLogger interface {
	Logger

	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Debugw(kvs ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Infow(kvs ...interface{})

	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Warnw(kvs ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Errorw(kvs ...interface{})

	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	Fatalw(kvs ...interface{})
}

var _ Logger = (*logger)(nil)

type logger struct {
	l              Logger
	ctx            context.Context
	prefixes       []interface{}
	containsValuer bool
}

// Log implements Logger
func (l logger) Log(level Level, kvs ...interface{}) {
	if filtered(level) {
		return
	}
	keyvals := make([]interface{}, 0, len(l.prefixes)+len(kvs))

	keyvals = append(keyvals, l.prefixes...)
	if l.containsValuer {
		calculateValues(l.ctx, keyvals)
	}
	keyvals = append(keyvals, kvs...)
	l.l.Log(level, keyvals...)
}

// With with default logger fields.
func With(l Logger, kvs ...interface{}) (Logger, error) {
	if len(kvs)&1 != 0 {
		return l, ErrKvsNotInPaired
	}
	d, ok := l.(*logger)
	if !ok {
		return &logger{
			l:              l,
			ctx:            context.Background(),
			prefixes:       kvs,
			containsValuer: containsValuer(kvs),
		}, nil
	}

	prefix := make([]interface{}, 0, len(d.prefixes)+len(kvs))
	prefix = append(prefix, d.prefixes...)
	prefix = append(prefix, kvs...)

	return &logger{
		l:              d.l,
		ctx:            d.ctx,
		prefixes:       prefix,
		containsValuer: d.containsValuer || containsValuer(kvs),
	}, nil
}

// WithContext returns a shallow copy of l with its context changed
// to ctx. The provided ctx must be non-nil.
func WithContext(ctx context.Context, l Logger) (Logger, error) {
	if nil == ctx {
		return l, ErrContextIsNil
	}
	d, ok := l.(*logger)
	if !ok {
		return &logger{l: l, ctx: ctx}, nil
	}
	return &logger{
		l:              d.l,
		ctx:            ctx,
		prefixes:       d.prefixes,
		containsValuer: d.containsValuer,
	}, nil
}

// NewFullLogger wraps l with the leveled helpers.
func NewFullLogger(l Logger) FullLogger {
	d, ok := l.(*logger)
	if !ok {
		d = &logger{l: l, ctx: context.Background()}
	}
	return &fullLogger{l: d}
}

// globalLogger resolves the global logger on every call, so loggers
// built on top of it follow SetLogger.
type globalLogger struct{}

func (globalLogger) Log(level Level, kvs ...interface{}) {
	GetLogger().Log(level, kvs...)
}

// ForSocket returns a FullLogger over the global logger whose lines all
// carry socket=h.
func ForSocket(h interface{}) FullLogger {
	return &fullLogger{l: &logger{
		l:        globalLogger{},
		ctx:      context.Background(),
		prefixes: []interface{}{"socket", h},
	}}
}

// exit ends the process after a fatal line.
var exit = os.Exit

var _ FullLogger = (*fullLogger)(nil)

type fullLogger struct {
	l *logger
}

func (l *fullLogger) Log(level Level, kvs ...interface{}) {
	l.l.Log(level, kvs...)
}

func (l *fullLogger) print(level Level, v []interface{}) {
	l.l.Log(level, DefaultMsgKey, fmt.Sprint(v...))
}

func (l *fullLogger) printf(level Level, format string, v []interface{}) {
	l.l.Log(level, DefaultMsgKey, fmt.Sprintf(format, v...))
}

func (l *fullLogger) Debug(v ...interface{})                 { l.print(LevelDebug, v) }
func (l *fullLogger) Debugf(format string, v ...interface{}) { l.printf(LevelDebug, format, v) }
func (l *fullLogger) Debugw(kvs ...interface{})              { l.Log(LevelDebug, kvs...) }

func (l *fullLogger) Info(v ...interface{})                 { l.print(LevelInfo, v) }
func (l *fullLogger) Infof(format string, v ...interface{}) { l.printf(LevelInfo, format, v) }
func (l *fullLogger) Infow(kvs ...interface{})              { l.Log(LevelInfo, kvs...) }

func (l *fullLogger) Warn(v ...interface{})                 { l.print(LevelWarn, v) }
func (l *fullLogger) Warnf(format string, v ...interface{}) { l.printf(LevelWarn, format, v) }
func (l *fullLogger) Warnw(kvs ...interface{})              { l.Log(LevelWarn, kvs...) }

func (l *fullLogger) Error(v ...interface{})                 { l.print(LevelError, v) }
func (l *fullLogger) Errorf(format string, v ...interface{}) { l.printf(LevelError, format, v) }
func (l *fullLogger) Errorw(kvs ...interface{})              { l.Log(LevelError, kvs...) }

func (l *fullLogger) Fatal(v ...interface{}) {
	l.print(LevelFatal, v)
	exit(1)
}

func (l *fullLogger) Fatalf(format string, v ...interface{}) {
	l.printf(LevelFatal, format, v)
	exit(1)
}

func (l *fullLogger) Fatalw(kvs ...interface{}) {
	l.Log(LevelFatal, kvs...)
	exit(1)
}

// WithFullLogger returns a copy of l whose lines carry kvs first.
// A FullLogger from another package is wrapped as a plain Logger.
func WithFullLogger(l FullLogger, kvs ...interface{}) (FullLogger, error) {
	var base Logger = l
	if fl, ok := l.(*fullLogger); ok {
		base = fl.l
	}
	d, err := With(base, kvs...)
	if err != nil {
		return l, err
	}
	return &fullLogger{l: d.(*logger)}, nil
}
