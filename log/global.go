package log

import (
	"context"
	"sync"
)

var (
	mu           sync.RWMutex
	global       Logger
	filterLevels = make(map[Level]struct{})
)

func init() {
	global = defaultLogger
}

// SetLogger replace default std logger
func SetLogger(l Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// GetLogger returns global logger
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// FilterLevel sets not logging level
func FilterLevel(level ...Level) {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range level {
		switch l {
		case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
			filterLevels[l] = struct{}{}
		default:
		}
	}
}

// SetLevel drops every level below min and re-enables the rest.
func SetLevel(min Level) {
	mu.Lock()
	defer mu.Unlock()
	filterLevels = make(map[Level]struct{})
	for l := LevelDebug; l < min; l++ {
		filterLevels[l] = struct{}{}
	}
}

func filtered(level Level) bool {
	mu.RLock()
	_, ok := filterLevels[level]
	mu.RUnlock()
	return ok
}

// NewContextLogger returns a FullLogger with context
// and the context only effects on FullLogger
func NewContextLogger(ctx context.Context) FullLogger {
	l, _ := WithContext(ctx, GetLogger())
	return &fullLogger{l: l.(*logger)}
}

// std backs the package level helpers.
var std = &fullLogger{l: &logger{l: globalLogger{}, ctx: context.Background()}}

func Log(level Level, kvs ...interface{}) {
	std.Log(level, kvs...)
}

func Debug(v ...interface{})                 { std.Debug(v...) }
func Debugf(format string, v ...interface{}) { std.Debugf(format, v...) }
func Debugw(kvs ...interface{})              { std.Debugw(kvs...) }

func Info(v ...interface{})                 { std.Info(v...) }
func Infof(format string, v ...interface{}) { std.Infof(format, v...) }
func Infow(kvs ...interface{})              { std.Infow(kvs...) }

func Warn(v ...interface{})                 { std.Warn(v...) }
func Warnf(format string, v ...interface{}) { std.Warnf(format, v...) }
func Warnw(kvs ...interface{})              { std.Warnw(kvs...) }

func Error(v ...interface{})                 { std.Error(v...) }
func Errorf(format string, v ...interface{}) { std.Errorf(format, v...) }
func Errorw(kvs ...interface{})              { std.Errorw(kvs...) }

func Fatal(v ...interface{})                 { std.Fatal(v...) }
func Fatalf(format string, v ...interface{}) { std.Fatalf(format, v...) }
func Fatalw(kvs ...interface{})              { std.Fatalw(kvs...) }
