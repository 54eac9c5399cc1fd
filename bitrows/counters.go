// counters.go — packed 2-bit saturating degree counters (atomic).
//
// One trimming round needs, per node, only the distinction between
// degree 0, 1, and ≥2. Two bits per node keep the full C32 node space in
// 2^32/16 words; saturation at 2 makes the increment loop branch-light.
// Counting runs concurrently across bucket workers, so bumps go through a
// CAS loop on the containing word.
package bitrows

import "sync/atomic"

// Counters is a packed array of 2-bit saturating counters, 32 per word.
type Counters struct {
	words []uint64
	n     uint64
}

// NewCounters allocates n zeroed counters.
func NewCounters(n uint64) *Counters {
	return &Counters{words: make([]uint64, (n+31)/32), n: n}
}

// Len returns the counter capacity.
//
//go:nosplit
//go:inline
func (c *Counters) Len() uint64 { return c.n }

// Reset zeroes every counter. Single-writer phase; runs between rounds
// under the round barrier.
func (c *Counters) Reset() {
	for w := range c.words {
		c.words[w] = 0
	}
}

// Bump increments counter i, saturating at 2. Safe for concurrent callers.
//
//go:nosplit
//go:registerparams
func (c *Counters) Bump(i uint32) {
	w := &c.words[i>>5]
	shift := uint(i&31) * 2
	for {
		old := atomic.LoadUint64(w)
		if old>>shift&3 >= 2 {
			return // saturated — nothing left to learn about this node
		}
		if atomic.CompareAndSwapUint64(w, old, old+1<<shift) {
			return
		}
	}
}

// AtLeast2 reports whether counter i saturated. Read-only phase; called
// after the counting barrier, so a plain load suffices.
//
//go:nosplit
//go:inline
//go:registerparams
func (c *Counters) AtLeast2(i uint32) bool {
	return c.words[i>>5]>>(uint(i&31)*2)&3 >= 2
}
