// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ BIT-PACKED ROW STORAGE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Fixed-Width Packed Cell Array
//
// Description:
//   Backing storage for bucket rows: fixed-width cells (1..64 bits) packed
//   little-endian into a contiguous uint64 word array. Random-access read
//   and in-place update without expanding cells to machine words in memory.
//
// Design Principles:
//   - Cell width chosen as the minimum that losslessly represents the
//     configured edge width — never rounded up to a byte boundary
//   - A cell write may never disturb an adjacent cell; straddled word
//     boundaries are handled with split masks
//   - Out-of-range values are a programming error and panic immediately
//     rather than silently wrapping into a neighbor
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package bitrows

import "math/bits"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PACKED CELL ARRAY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Rows is a fixed-count array of width-bit cells.
//
//go:notinheap
type Rows struct {
	words []uint64
	width uint
	count int
	max   uint64 // largest representable cell value
}

// NewRows allocates count cells of the given bit width. Width outside
// 1..64 is a construction error.
func NewRows(count int, width uint) *Rows {
	if width == 0 || width > 64 {
		panic("bitrows: cell width must be 1..64")
	}
	if count < 0 {
		panic("bitrows: negative cell count")
	}
	totalBits := uint64(count) * uint64(width)
	nWords := (totalBits + 63) / 64
	var max uint64
	if width == 64 {
		max = ^uint64(0)
	} else {
		max = (uint64(1) << width) - 1
	}
	return &Rows{
		words: make([]uint64, nWords),
		width: width,
		count: count,
		max:   max,
	}
}

// Count returns the number of cells.
//
//go:nosplit
//go:inline
func (r *Rows) Count() int { return r.count }

// Width returns the cell width in bits.
//
//go:nosplit
//go:inline
func (r *Rows) Width() uint { return r.width }

// Max returns the largest storable cell value.
//
//go:nosplit
//go:inline
func (r *Rows) Max() uint64 { return r.max }

// Get reads cell i.
//
//go:nosplit
//go:inline
//go:registerparams
func (r *Rows) Get(i int) uint64 {
	bit := uint64(i) * uint64(r.width)
	w := bit >> 6
	off := uint(bit & 63)

	v := r.words[w] >> off
	if off+r.width > 64 {
		// Cell straddles the word boundary: splice in the high part.
		v |= r.words[w+1] << (64 - off)
	}
	return v & r.max
}

// Set writes cell i in place. Values above the cell maximum are a
// programming error — panic, never wrap into a neighbor.
//
//go:nosplit
//go:registerparams
func (r *Rows) Set(i int, v uint64) {
	if v > r.max {
		panic("bitrows: value exceeds cell width")
	}
	bit := uint64(i) * uint64(r.width)
	w := bit >> 6
	off := uint(bit & 63)

	mask := r.max << off
	r.words[w] = r.words[w]&^mask | v<<off
	if off+r.width > 64 {
		spill := 64 - off // bits of the cell that landed in words[w]
		hiMask := r.max >> spill
		r.words[w+1] = r.words[w+1]&^hiMask | v>>spill
	}
}

// Grow returns a copy with the cell count raised to newCount. The bit
// layout is contiguous, so the word array copies verbatim.
func (r *Rows) Grow(newCount int) *Rows {
	if newCount < r.count {
		panic("bitrows: Grow must not shrink")
	}
	ng := NewRows(newCount, r.width)
	copy(ng.words, r.words)
	return ng
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// LIVE BITSET
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Bitset tracks per-row liveness. Ownership is exclusive per bucket per
// trimming round, so operations are plain word stores — the round barrier
// provides the ordering.
type Bitset struct {
	words []uint64
	n     int
}

// NewBitset allocates n cleared bits.
func NewBitset(n int) *Bitset {
	return &Bitset{words: make([]uint64, (n+63)/64), n: n}
}

// Len returns the bit capacity.
//
//go:nosplit
//go:inline
func (b *Bitset) Len() int { return b.n }

// Set marks bit i.
//
//go:nosplit
//go:inline
//go:registerparams
func (b *Bitset) Set(i int) {
	b.words[i>>6] |= 1 << uint(i&63)
}

// Clear unmarks bit i.
//
//go:nosplit
//go:inline
//go:registerparams
func (b *Bitset) Clear(i int) {
	b.words[i>>6] &^= 1 << uint(i&63)
}

// Test reports bit i.
//
//go:nosplit
//go:inline
//go:registerparams
func (b *Bitset) Test(i int) bool {
	return b.words[i>>6]>>uint(i&63)&1 == 1
}

// SetFirst marks bits [0, n) and clears the rest. Used when a bucket is
// refilled for a fresh attempt.
func (b *Bitset) SetFirst(n int) {
	for w := range b.words {
		b.words[w] = 0
	}
	full := n >> 6
	for w := 0; w < full; w++ {
		b.words[w] = ^uint64(0)
	}
	if rem := uint(n & 63); rem != 0 {
		b.words[full] = (uint64(1) << rem) - 1
	}
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	total := 0
	for _, w := range b.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Reset clears every bit.
func (b *Bitset) Reset() {
	for w := range b.words {
		b.words[w] = 0
	}
}
