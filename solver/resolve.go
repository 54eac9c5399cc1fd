// resolve.go — candidate validation & canonical nonce recovery.
//
// The downstream verifier recomputes the graph independently and expects
// a canonical ascending nonce encoding. A buggy trimmer or finder must
// never leak a malformed submission to the peer, so every candidate is
// re-validated from the key before it is forwarded: length, edge
// distinctness, alternation, closure, and an endpoint round-trip against
// the generator. Rejects are logged and skipped — they are expected,
// benign outcomes of probabilistic search, not operator-facing errors.
package solver

import (
	"sort"

	"cuckatoo/cycle"
	"cuckatoo/debug"
	"cuckatoo/utils"

	"golang.org/x/crypto/blake2b"
)

// Resolve maps every structurally valid candidate to its canonical nonce
// list plus verification hash, in candidate order.
func (pl *pipeline) Resolve(sols []cycle.Solution) ([]Resolved, error) {
	if pl.src == nil {
		return nil, ErrNoKey
	}

	out := make([]Resolved, 0, len(sols))
	for i := range sols {
		if !pl.validCycle(&sols[i]) {
			debug.DropMessage("RESOLVE", "rejected malformed candidate ("+
				utils.Itoa(len(sols[i].Edges))+" edges)")
			continue
		}

		nonces := make([]uint64, len(sols[i].Edges))
		for j, e := range sols[i].Edges {
			nonces[j] = e.Idx
		}
		sort.Slice(nonces, func(a, b int) bool { return nonces[a] < nonces[b] })

		out = append(out, Resolved{
			Nonces: nonces,
			Hash:   hashNonces(nonces),
		})
	}
	return out, nil
}

// validCycle re-checks every structural invariant of a candidate against
// the generator itself.
func (pl *pipeline) validCycle(sol *cycle.Solution) bool {
	n := len(sol.Edges)
	if n != pl.params.CycleLength {
		return false
	}

	seen := make(map[uint64]struct{}, n)
	for i := range sol.Edges {
		e := &sol.Edges[i]
		if _, dup := seen[e.Idx]; dup {
			return false
		}
		seen[e.Idx] = struct{}{}

		// Endpoint round-trip: the walk's endpoints must be exactly
		// what the generator derives for this edge index.
		u, v := pl.src.Endpoints(e.Idx)
		if u != e.U || v != e.V {
			return false
		}
	}

	// Alternating closure: consecutive edges share one endpoint,
	// switching partitions each step, and the walk closes on itself.
	for i := 0; i < n; i++ {
		a, b := &sol.Edges[i], &sol.Edges[(i+1)%n]
		if i%2 == 0 {
			if a.V != b.V {
				return false
			}
		} else if a.U != b.U {
			return false
		}
	}
	return true
}

// hashNonces computes the quick-look verification hash over the canonical
// list: blake2b-256 of the nonces serialized little-endian.
func hashNonces(nonces []uint64) [32]byte {
	buf := make([]byte, len(nonces)*8)
	for i, n := range nonces {
		utils.StoreLE64(buf[i*8:], n)
	}
	return blake2b.Sum256(buf)
}
