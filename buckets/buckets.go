// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ BUCKET SORTER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Edge-Space Partitioner & Row Storage
//
// Description:
//   Partitions the full edge index space into 2^bucket_bits buckets keyed by
//   the high bits of the u-side endpoint, bounding the working set of one
//   trimming pass to a cache-resident slice regardless of total graph size.
//
// Row layout:
//   One packed cell per edge: [ u-remainder | edge-index ]. The v endpoint
//   is never stored — it is regenerated from the key when a round needs it,
//   trading extra hashing for reduced peak memory. The u side reassembles
//   from bucket id + remainder without touching the hash at all.
//
// Conservation law:
//   After Fill, the sum of bucket row counts equals 2^edge_bits exactly.
//   No edge index is dropped or duplicated, ever — overflow grows the
//   bucket or fails the whole attempt, never truncates.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package buckets

import (
	"errors"

	"cuckatoo/bitrows"
	"cuckatoo/constants"
	"cuckatoo/edgegen"
)

// ErrOverflow reports a bucket that outgrew the capacity policy. The
// attempt is abandoned cleanly; the driver moves to the next nonce.
var ErrOverflow = errors.New("buckets: row count exceeded capacity policy")

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Bucket owns a packed row array plus a live bitset. Rows are exclusive to
// the bucket; only the fill pass appends.
type Bucket struct {
	rows *bitrows.Rows
	live *bitrows.Bitset
	n    int
}

// Set is the full bucket collection for one graph width. Backing storage
// is reused across attempts via Reset — reallocation would dominate the
// attempt cadence at C31/C32 scale.
type Set struct {
	edgeBits   uint32
	bucketBits uint32
	shift      uint32 // edgeBits - bucketBits: low-bit width of u remainder
	idxWidth   uint   // bits per stored edge index
	remWidth   uint   // bits per stored u remainder
	idxMask    uint64
	meanCap    int
	maxCap     int
	buckets    []Bucket
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New allocates the bucket set for a graph of 2^edgeBits edges split by
// the top bucketBits bits of u. Cell width is the exact sum of the index
// and remainder widths — never rounded up to a byte.
func New(edgeBits, bucketBits uint32) *Set {
	if bucketBits == 0 || bucketBits >= edgeBits {
		panic("buckets: bucketBits must be in 1..edgeBits-1")
	}
	nBuckets := 1 << bucketBits
	nEdges := uint64(1) << edgeBits
	mean := int(nEdges / uint64(nBuckets))
	alloc := mean * constants.BucketSlackNum / constants.BucketSlackDen

	s := &Set{
		edgeBits:   edgeBits,
		bucketBits: bucketBits,
		shift:      edgeBits - bucketBits,
		idxWidth:   uint(edgeBits),
		remWidth:   uint(edgeBits - bucketBits),
		idxMask:    nEdges - 1,
		meanCap:    mean,
		maxCap:     mean * constants.BucketGrowLimit,
		buckets:    make([]Bucket, nBuckets),
	}
	cellWidth := s.idxWidth + s.remWidth
	for i := range s.buckets {
		s.buckets[i].rows = bitrows.NewRows(alloc, cellWidth)
		s.buckets[i].live = bitrows.NewBitset(alloc)
	}
	return s
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ACCESSORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// NumBuckets returns 2^bucketBits.
//
//go:nosplit
//go:inline
func (s *Set) NumBuckets() int { return len(s.buckets) }

// EdgeBits returns the graph width the set was sized for.
//
//go:nosplit
//go:inline
func (s *Set) EdgeBits() uint32 { return s.edgeBits }

// Len returns the filled row count of bucket b.
//
//go:nosplit
//go:inline
func (s *Set) Len(b int) int { return s.buckets[b].n }

// EdgeIndex returns the original edge index of row j in bucket b.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *Set) EdgeIndex(b, j int) uint64 {
	return s.buckets[b].rows.Get(j) & s.idxMask
}

// NodeU reassembles the full u endpoint of row j in bucket b from the
// bucket id and the stored remainder — no hashing.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *Set) NodeU(b, j int) uint32 {
	rem := uint32(s.buckets[b].rows.Get(j) >> s.idxWidth)
	return uint32(b)<<s.shift | rem
}

// Live reports whether row j of bucket b survived trimming so far.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *Set) Live(b, j int) bool { return s.buckets[b].live.Test(j) }

// Kill removes row j of bucket b. Exclusive bucket ownership per round
// makes this a plain bit clear.
//
//go:nosplit
//go:inline
//go:registerparams
func (s *Set) Kill(b, j int) { s.buckets[b].live.Clear(j) }

// LiveCount sums surviving rows across all buckets.
func (s *Set) LiveCount() uint64 {
	var total uint64
	for b := range s.buckets {
		total += uint64(s.buckets[b].live.Count())
	}
	return total
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FILL & RESET
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Reset clears all row counts and liveness for the next attempt. Backing
// arrays are retained.
func (s *Set) Reset() {
	for b := range s.buckets {
		s.buckets[b].n = 0
		s.buckets[b].live.Reset()
	}
}

// Fill distributes every edge index into its bucket. On return every
// index in [0, 2^edgeBits) sits in exactly one bucket and is marked live.
// A bucket past the grow limit fails the attempt with ErrOverflow.
func (s *Set) Fill(src edgegen.Source) error {
	if src.EdgeBits() != s.edgeBits {
		panic("buckets: source width does not match set")
	}
	s.Reset()
	remMask := uint32(1)<<s.shift - 1

	nEdges := uint64(1) << s.edgeBits
	for edge := uint64(0); edge < nEdges; edge++ {
		u, _ := src.Endpoints(edge)
		b := int(u >> s.shift)
		bk := &s.buckets[b]

		if bk.n == bk.rows.Count() {
			if err := s.grow(b); err != nil {
				return err
			}
		}
		cell := uint64(u&remMask)<<s.idxWidth | edge
		bk.rows.Set(bk.n, cell)
		bk.n++
	}

	for b := range s.buckets {
		s.buckets[b].live.SetFirst(s.buckets[b].n)
	}
	return nil
}

// grow doubles bucket b's row capacity, bounded by the policy cap.
func (s *Set) grow(b int) error {
	bk := &s.buckets[b]
	next := bk.rows.Count() * 2
	if next > s.maxCap {
		next = s.maxCap
	}
	if next <= bk.rows.Count() {
		return ErrOverflow
	}
	bk.rows = bk.rows.Grow(next)
	grown := bitrows.NewBitset(next)
	bk.live = grown
	return nil
}
