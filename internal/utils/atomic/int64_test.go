package atomic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicInt64_Dec(t *testing.T) {
	val := AtomicInt64(100)
	wg := sync.WaitGroup{}

	cnt := 100
	wg.Add(cnt)
	for i := 0; i < cnt; i++ {
		go func() {
			val.Dec()
			wg.Done()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(0), val.Value())
}

func TestAtomicInt64_Inc(t *testing.T) {
	val := AtomicInt64(0)
	wg := sync.WaitGroup{}

	cnt := 100
	seen := sync.Map{}
	wg.Add(cnt)
	for i := 0; i < cnt; i++ {
		go func() {
			seen.Store(val.Inc(), struct{}{})
			wg.Done()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(cnt), val.Value())

	unique := 0
	seen.Range(func(_, _ interface{}) bool {
		unique++
		return true
	})
	assert.Equal(t, cnt, unique, "every Inc must return a distinct value")
}
