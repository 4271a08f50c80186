package xtesting

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var counters sync.Map // map[string]*atomic.Uint64

// SequentialName returns a unique name with the given prefix, such as
// "set-1", "set-2", etc.
func SequentialName(prefix string) string {
	v, ok := counters.Load(prefix)
	if !ok {
		var counter atomic.Uint64
		v, _ = counters.LoadOrStore(prefix, &counter)
	}

	counter := v.(*atomic.Uint64)
	return fmt.Sprintf("%s-%d", prefix, counter.Add(1))
}
