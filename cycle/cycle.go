// ════════════════════════════════════════════════════════════════════════════════════════════════
// CYCLE FINDER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Fixed-Length Cycle Search On The Trimmed Residual
//
// Description:
//   The residual graph after trimming is small enough (thousands of edges)
//   to build explicit adjacency and run a depth-first search for simple
//   cycles of exactly the target length, alternating partitions at every
//   step. All cycles located inside the work budget are returned in
//   discovery order; exhaustion of the budget degrades to "no further
//   solutions" rather than unbounded scanning.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package cycle

// Edge is one surviving edge of the residual graph.
type Edge struct {
	Idx uint64 // original edge index (nonce)
	U   uint32 // partition-0 endpoint
	V   uint32 // partition-1 endpoint
}

// Solution is a closed alternating walk of exactly the target length.
// Edges appear in walk order: solution[k] and solution[k+1] share one
// endpoint, alternating partitions; the last edge closes on the first.
type Solution struct {
	Edges []Edge
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FINDER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Finder holds the search configuration. Zero-value is not usable; build
// with NewFinder.
type Finder struct {
	target int
	budget int
}

// NewFinder configures a search for cycles of exactly target edges under
// a DFS step budget.
func NewFinder(target, budget int) *Finder {
	if target < 2 || target%2 != 0 {
		panic("cycle: target length must be even and ≥2")
	}
	return &Finder{target: target, budget: budget}
}

// search carries the per-run DFS state.
type search struct {
	edges  []Edge
	uAdj   map[uint32][]int32
	vAdj   map[uint32][]int32
	inPath []bool
	onU    map[uint32]bool
	onV    map[uint32]bool
	path   []int32
	target int
	budget int
	found  []Solution
	seen   map[string]struct{}
}

// Find returns every distinct target-length cycle discovered in the
// residual before the budget runs out, in discovery order.
func (f *Finder) Find(edges []Edge) []Solution {
	if len(edges) < f.target {
		return nil
	}

	s := &search{
		edges:  edges,
		uAdj:   make(map[uint32][]int32, len(edges)),
		vAdj:   make(map[uint32][]int32, len(edges)),
		inPath: make([]bool, len(edges)),
		onU:    make(map[uint32]bool, f.target),
		onV:    make(map[uint32]bool, f.target),
		path:   make([]int32, 0, f.target),
		target: f.target,
		budget: f.budget,
		seen:   make(map[string]struct{}),
	}
	for i := range edges {
		s.uAdj[edges[i].U] = append(s.uAdj[edges[i].U], int32(i))
		s.vAdj[edges[i].V] = append(s.vAdj[edges[i].V], int32(i))
	}

	// Each cycle is reachable from its lowest-numbered edge; starting
	// the walk there and refusing lower-numbered edges along the path
	// prunes most of the 2×target rediscovery factor.
	for start := range edges {
		if s.budget <= 0 {
			break
		}
		e := &edges[start]
		s.inPath[start] = true
		s.onU[e.U] = true
		s.onV[e.V] = true
		s.path = append(s.path, int32(start))
		s.walk(e.V, 1, int32(start), e.U)
		s.path = s.path[:0]
		s.inPath[start] = false
		delete(s.onU, e.U)
		delete(s.onV, e.V)
	}
	return s.found
}

// walk extends the path from node on the given side (0=u, 1=v). closeOn
// is the start edge's u endpoint; a walk of target edges landing there
// closes a cycle.
func (s *search) walk(node uint32, side uint8, start int32, closeOn uint32) {
	s.budget--
	if s.budget <= 0 {
		return
	}

	var adj []int32
	if side == 0 {
		adj = s.uAdj[node]
	} else {
		adj = s.vAdj[node]
	}

	for _, ei := range adj {
		if s.inPath[ei] || ei < start {
			continue
		}
		e := &s.edges[ei]

		var next uint32
		if side == 0 {
			next = e.V
		} else {
			next = e.U
		}

		if len(s.path) == s.target-1 {
			// Final edge: must land exactly on the closing endpoint
			// (side 0 for an even target). Any other repeat of an
			// on-path node would make the walk non-simple.
			if side == 1 && next == closeOn {
				s.path = append(s.path, ei)
				s.record()
				s.path = s.path[:len(s.path)-1]
			}
			continue
		}

		// Simple cycles only: a node may appear on the path once.
		if side == 0 && s.onV[next] || side == 1 && s.onU[next] {
			continue
		}

		s.inPath[ei] = true
		s.path = append(s.path, ei)
		if side == 0 {
			s.onV[next] = true
		} else {
			s.onU[next] = true
		}
		s.walk(next, side^1, start, closeOn)
		if side == 0 {
			delete(s.onV, next)
		} else {
			delete(s.onU, next)
		}
		s.path = s.path[:len(s.path)-1]
		s.inPath[ei] = false
		if s.budget <= 0 {
			return
		}
	}
}

// record canonicalizes the current path and stores it unless the same
// edge set was already found via the opposite walk direction.
func (s *search) record() {
	key := make([]byte, 0, len(s.path)*8)
	sorted := make([]int32, len(s.path))
	copy(sorted, s.path)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	for _, ei := range sorted {
		idx := s.edges[ei].Idx
		key = append(key,
			byte(idx), byte(idx>>8), byte(idx>>16), byte(idx>>24),
			byte(idx>>32), byte(idx>>40), byte(idx>>48), byte(idx>>56))
	}
	if _, dup := s.seen[string(key)]; dup {
		return
	}
	s.seen[string(key)] = struct{}{}

	sol := Solution{Edges: make([]Edge, len(s.path))}
	for i, ei := range s.path {
		sol.Edges[i] = s.edges[ei]
	}
	s.found = append(s.found, sol)
}
