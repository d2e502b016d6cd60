// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import (
	"runtime"
	"sync"
)

var (
	// ThreadingThreshold is the threshold in number of flops (floating point ops),
	// computed as tensor N * flops per element, to engage actual parallel processing.
	// Heuristically, numbers below this threshold do not result in
	// an overall speedup, due to overhead costs.
	ThreadingThreshold = 100_000

	// NumThreads is the number of threads to use for parallel threading.
	// The default of 0 causes the [runtime.GOMAXPROCS] to be used.
	NumThreads = 0
)

// Vectorize applies given function 'fun' to indexes 0..n-1 in sequence.
func Vectorize(n int, fun func(idx int)) {
	for idx := range n {
		fun(idx)
	}
}

// VectorizeThreaded is a version of [Vectorize] that will automatically
// distribute the computation in parallel across multiple "threads" (goroutines)
// if the number of elements to be computed times the given flops
// (floating point operations) for the function exceeds the [ThreadingThreshold].
// The function must only write to locations determined by idx, so that
// calls for different indexes never overlap. All calls have completed
// when VectorizeThreaded returns.
func VectorizeThreaded(flops, n int, fun func(idx int)) {
	if n*flops < ThreadingThreshold {
		Vectorize(n, fun)
		return
	}
	VectorizeOnThreads(0, n, fun)
}

// DefaultNumThreads returns the default number of threads to use:
// NumThreads if non-zero, otherwise [runtime.GOMAXPROCS].
func DefaultNumThreads() int {
	if NumThreads > 0 {
		return NumThreads
	}
	return runtime.GOMAXPROCS(0)
}

// VectorizeOnThreads runs given [Vectorize] function on given number
// of threads, splitting the index range into contiguous blocks.
// If threads is 0, then the [DefaultNumThreads] will be used.
func VectorizeOnThreads(threads, n int, fun func(idx int)) {
	if threads == 0 {
		threads = DefaultNumThreads()
	}
	nper := n / threads
	if nper == 0 {
		Vectorize(n, fun)
		return
	}
	var wait sync.WaitGroup
	for start := 0; start < n; start += nper {
		end := min(start+nper, n)
		wait.Add(1)
		go func() {
			for idx := start; idx < end; idx++ {
				fun(idx)
			}
			wait.Done()
		}()
	}
	wait.Wait()
}
