// Package parallel provides the intra-call fork-join primitive used by the
// filterbank: a bounded parallel-for with a single join barrier. Workers
// must touch only their own index's state; merging happens after the join.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// For runs fn(i) for every i in [0, n) across at most GOMAXPROCS worker
// goroutines and returns once all invocations complete. For small n the
// calls run inline on the caller's goroutine.
func For(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}

		return
	}

	var (
		wg   sync.WaitGroup
		next atomic.Int64
	)

	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()

			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}

				fn(i)
			}
		}()
	}

	wg.Wait()
}
