// dispatch.go — per-phase bucket dispatch strategies.
//
// The CPU backend spreads buckets across a fixed worker pool; the
// accelerator-shaped backend issues one task per bucket per phase, the
// structure a GPU expresses as one kernel dispatch per round. Both meet
// at the same barrier semantics, which is what makes the two solver
// backends equivalence-testable.
package trim

import "sync"

// Dispatcher runs fn(i) for every i in [0, n) and returns once all calls
// have completed — the phase barrier.
type Dispatcher interface {
	Dispatch(n int, fn func(i int))
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WORKER POOL (CPU BACKEND)
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Pool stripes items across a fixed number of workers. Worker w owns
// items w, w+W, w+2W, … so bucket ownership stays exclusive per phase.
type Pool struct {
	Workers int
}

// Dispatch fans n items across the pool and joins at the barrier.
func (p Pool) Dispatch(n int, fn func(i int)) {
	w := p.Workers
	if w < 1 {
		w = 1
	}
	if w > n {
		w = n
	}
	var wg sync.WaitGroup
	wg.Add(w)
	for k := 0; k < w; k++ {
		go func(start int) {
			defer wg.Done()
			for i := start; i < n; i += w {
				fn(i)
			}
		}(k)
	}
	wg.Wait()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FLAT GRID (ACCELERATOR-SHAPED BACKEND)
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Grid launches one task per item — the dispatch-per-round shape an
// accelerator backend must satisfy to stay a drop-in alternative.
type Grid struct{}

// Dispatch issues all n tasks at once and joins at the barrier.
func (Grid) Dispatch(n int, fn func(i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			fn(i)
		}(i)
	}
	wg.Wait()
}
