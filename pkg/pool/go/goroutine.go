package _go

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/emove/connector/log"
	"github.com/panjf2000/ants/v2"
)

var (
	// DefaultAntsPoolSize sets up the capacity of worker pool.
	// A connector keeps at most a handful of sockets alive, each with one read loop.
	DefaultAntsPoolSize = 1 << 10
)

const (
	// ExpiryDuration is the interval time to clean up those expired workers.
	ExpiryDuration = 10 * time.Second

	// Nonblocking decides what to do when submitting a new task to a full worker pool: waiting for a available worker
	// or returning nil directly.
	Nonblocking = true
)

type logger struct {
}

func (*logger) Printf(format string, a ...interface{}) {
	log.Errorf(format, a...)
}

func init() {
	// It releases the default pool from ants.
	ants.Release()
}

// Pool is the alias of ants.Pool.
type Pool = ants.Pool

var (
	mu     sync.RWMutex
	global *Pool
)

// Init instantiates a non-blocking *WorkerPool with the capacity of DefaultAntsPoolSize.
// It is a no-op while a pool is live.
func Init() {
	Setup(DefaultAntsPoolSize)
}

// Setup instantiates the process pool with capacity size, DefaultAntsPoolSize
// when size is not positive. The first caller decides the capacity, later
// calls keep the live pool untouched.
func Setup(size int) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return
	}
	if size <= 0 {
		size = DefaultAntsPoolSize
	}
	options := ants.Options{
		ExpiryDuration: ExpiryDuration,
		Nonblocking:    Nonblocking,
		PanicHandler: func(err interface{}) {
			log.Errorf("panic on worker: %v,\n %s", err, string(debug.Stack()))
		},
		Logger: &logger{},
	}
	p, err := ants.NewPool(size, ants.WithOptions(options))
	if err != nil {
		log.Warnw("msg", "goroutine pool disabled", "err", err)
		global = nil
		return
	}
	global = p
}

// Submit runs task on the pool, or on a new goroutine when the pool
// is not initialized or is saturated.
func Submit(task func()) {
	mu.RLock()
	p := global
	mu.RUnlock()
	if p != nil {
		err := p.Submit(task)
		if err == nil {
			return
		}
		log.Warnw("msg", "goroutine pool err", "err", err)
	}
	go task()
}

// Running returns the number of busy workers, zero without a pool.
func Running() int {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return 0
	}
	return global.Running()
}

// Cap returns the capacity of the live pool, zero without a pool.
func Cap() int {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return 0
	}
	return global.Cap()
}

// Release closes the pool; later submissions run on plain goroutines.
func Release() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.Release()
		global = nil
	}
}
