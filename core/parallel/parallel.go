// Package parallel provides range-splitting helpers for embarrassingly
// parallel loops over index ranges.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits [0, n) across GOMAXPROCS workers and runs fn on each
// contiguous chunk. fn receives half-open [start, end) bounds and must not
// share mutable state across chunks without its own synchronization.
func Parallelize(n int, fn func(start, end int)) {
	ParallelizeWithThreshold(n, 0, fn)
}

// ParallelizeWithThreshold runs fn over [0, n), sequentially when n is
// below threshold and in parallel chunks otherwise. The per-candidate
// searches of the bounding engine reduce commutatively over results, so
// chunk completion order does not matter.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if n < threshold || workers <= 1 || n == 1 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
