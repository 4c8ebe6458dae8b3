// Package parallel provides the worker sizing, work partitioning and
// synchronization used by training and classification.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// NumWorkers returns the hardware concurrency: the number of logical cores
// reported by the CPU, falling back to the runtime's count, never below 1.
func NumWorkers() int {
	n := cpuid.CPU.LogicalCores
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(n, 1)
}

// Range is a contiguous, half-open run of sample indices [First, First+N).
type Range struct {
	First int
	N     int
}

// End returns the index one past the last element of r.
func (r Range) End() int {
	return r.First + r.N
}

// Partition splits n items into at most workers contiguous, disjoint ranges
// of ceil(n/workers) items each; the last range may be shorter.
// No empty range is returned, so fewer than workers ranges come back when
// n is small.
func Partition(n, workers int) []Range {
	if n <= 0 {
		return nil
	}
	workers = min(max(workers, 1), n)

	chunk := (n + workers - 1) / workers
	ranges := make([]Range, 0, workers)
	for first := 0; first < n; first += chunk {
		ranges = append(ranges, Range{First: first, N: min(chunk, n-first)})
	}
	return ranges
}

// Run executes f once per range on its own goroutine and waits for all of
// them to return.
func Run(ranges []Range, f func(worker int, r Range)) {
	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i int, r Range) {
			defer wg.Done()
			f(i, r)
		}(i, r)
	}
	wg.Wait()
}
