// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ LEAF TRIMMER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Iterative Degree-Based Edge Removal
//
// Description:
//   Shrinks the graph toward its cycle-bearing core by repeatedly removing
//   edges incident to degree-1 nodes. Each round counts one partition's
//   degrees over all live rows, then kills every edge whose endpoint on
//   that side failed to reach degree 2.
//
// Concurrency model:
//   Buckets are processed in parallel within a phase; a barrier separates
//   the count phase from the kill phase and one round from the next,
//   because cross-bucket edges share node identities. Bucket ownership is
//   exclusive inside a phase; the shared degree counters absorb the only
//   cross-worker writes (atomic saturating bumps).
//
// Invariant:
//   The live edge count is monotonically non-increasing across rounds.
//   Round-budget exhaustion is not an error — the residual is simply
//   handed to the cycle finder as-is.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package trim

import (
	"sync/atomic"

	"cuckatoo/bitrows"
	"cuckatoo/buckets"
	"cuckatoo/edgegen"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Stats summarizes one trimming run.
type Stats struct {
	Rounds    int    // rounds actually executed
	Live      uint64 // surviving edge count
	Converged bool   // true if a fixed point was reached inside the budget
}

// Trimmer drives the round loop over a bucket set. The counter array
// covers the full node space of one partition; it is allocated once and
// reused across rounds and attempts — at C32 scale it is the largest
// single allocation in the process.
type Trimmer struct {
	set      *buckets.Set
	src      edgegen.Source
	counters *bitrows.Counters
	rounds   int
	disp     Dispatcher
}

// New builds a trimmer with a fixed round budget. The dispatcher decides
// how bucket work is spread across cores (worker pool vs. flat dispatch).
func New(set *buckets.Set, rounds int, disp Dispatcher) *Trimmer {
	return &Trimmer{
		set:      set,
		counters: bitrows.NewCounters(uint64(1) << set.EdgeBits()),
		rounds:   rounds,
		disp:     disp,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ROUND LOOP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Run executes trimming rounds until the budget is exhausted or two
// consecutive rounds remove nothing (one side being clean says nothing
// about the other, so a single zero round is not a fixed point). The
// source must be the one the bucket set was filled from.
func (t *Trimmer) Run(src edgegen.Source) Stats {
	t.src = src
	stats := Stats{}
	zeroStreak := 0

	for r := 0; r < t.rounds; r++ {
		side := uint32(r & 1)
		killed := t.round(side)
		stats.Rounds++

		if killed == 0 {
			zeroStreak++
			if zeroStreak == 2 {
				stats.Converged = true
				break
			}
		} else {
			zeroStreak = 0
		}
	}

	stats.Live = t.set.LiveCount()
	return stats
}

// round counts one side's degrees then kills the leaves, with a barrier
// between the phases. Returns the number of edges removed.
func (t *Trimmer) round(side uint32) uint64 {
	t.counters.Reset()

	nb := t.set.NumBuckets()

	// Phase 1: degree counting over live rows.
	t.disp.Dispatch(nb, func(b int) {
		for j, n := 0, t.set.Len(b); j < n; j++ {
			if !t.set.Live(b, j) {
				continue
			}
			t.counters.Bump(t.endpoint(side, b, j))
		}
	})

	// Phase 2: kill every edge touching a degree-1 node on this side.
	var killed atomic.Uint64
	t.disp.Dispatch(nb, func(b int) {
		var local uint64
		for j, n := 0, t.set.Len(b); j < n; j++ {
			if !t.set.Live(b, j) {
				continue
			}
			if !t.counters.AtLeast2(t.endpoint(side, b, j)) {
				t.set.Kill(b, j)
				local++
			}
		}
		killed.Add(local)
	})

	return killed.Load()
}

// endpoint resolves the side-s node of a row. The u side reassembles from
// the stored remainder; the v side is regenerated from the key — stateless
// edges trade hashing for memory.
//
//go:nosplit
//go:inline
func (t *Trimmer) endpoint(side uint32, b, j int) uint32 {
	if side == 0 {
		return t.set.NodeU(b, j)
	}
	_, v := t.src.Endpoints(t.set.EdgeIndex(b, j))
	return v
}
