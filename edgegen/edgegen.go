// ════════════════════════════════════════════════════════════════════════════════════════════════
// KEYED EDGE GENERATOR
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Edge → Endpoint Derivation
//
// Description:
//   Derives the four 64-bit graph subkeys from a job's pre-pow header and a
//   nonce, and maps any edge index to its two endpoint node ids, one per
//   partition. Edges are never materialized: endpoints are recomputed on
//   demand from the key, which is what keeps a 2^32-edge graph inside
//   bounded memory.
//
// Contract:
//   Endpoints(edge) is a pure function over [0, 2^edge_bits). Endpoint
//   collisions are expected and are exactly what trimming handles.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package edgegen

import (
	"cuckatoo/siphash"
	"cuckatoo/utils"

	"golang.org/x/crypto/blake2b"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SOURCE CONTRACT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Source is the endpoint oracle the whole pipeline is built against.
// The production implementation is Key; test fixtures plant table-backed
// graphs behind the same contract.
type Source interface {
	// EdgeBits returns log2 of the edge count.
	EdgeBits() uint32

	// Endpoints maps an edge index to its u-partition and v-partition
	// node ids. Deterministic, side-effect free.
	Endpoints(edge uint64) (u, v uint32)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// GRAPH KEY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Key holds the four subkeys of one solve attempt. Immutable once built;
// owned exclusively by a single in-flight attempt.
type Key struct {
	K0, K1, K2, K3 uint64
	edgeBits       uint32
	mask           uint32
}

// NewKey wraps four raw subkeys for the given graph width.
func NewKey(k [4]uint64, edgeBits uint32) *Key {
	return &Key{
		K0: k[0], K1: k[1], K2: k[2], K3: k[3],
		edgeBits: edgeBits,
		mask:     uint32((uint64(1) << edgeBits) - 1),
	}
}

// DeriveKey computes the seed hash for a job+nonce pair and unpacks it into
// the four subkeys: blake2b-256 over pre_pow ‖ LE64(nonce), read as four
// little-endian words.
func DeriveKey(prePow []byte, nonce uint64, edgeBits uint32) *Key {
	header := make([]byte, len(prePow)+8)
	copy(header, prePow)
	utils.StoreLE64(header[len(prePow):], nonce)

	seed := blake2b.Sum256(header)
	return NewKey([4]uint64{
		utils.LoadLE64(seed[0:8]),
		utils.LoadLE64(seed[8:16]),
		utils.LoadLE64(seed[16:24]),
		utils.LoadLE64(seed[24:32]),
	}, edgeBits)
}

// EdgeBits returns the graph width the key was bound to.
//
//go:nosplit
//go:inline
func (k *Key) EdgeBits() uint32 {
	return k.edgeBits
}

// Endpoints derives both node ids of an edge. u lives in partition 0,
// v in partition 1; both are edge_bits wide.
//
//go:nosplit
//go:inline
//go:registerparams
func (k *Key) Endpoints(edge uint64) (u, v uint32) {
	u = uint32(siphash.Block(k.K0, k.K1, k.K2, k.K3, 2*edge)) & k.mask
	v = uint32(siphash.Block(k.K0, k.K1, k.K2, k.K3, 2*edge+1)) & k.mask
	return
}
