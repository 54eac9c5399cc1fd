// ════════════════════════════════════════════════════════════════════════════════════════════════
// SIPHASH-2-4 NODE PRIMITIVE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Keyed Hash Primitive
//
// Description:
//   Single-block siphash-2-4 keyed by four raw 64-bit subkeys, as used by the
//   Cuckatoo edge→node derivation. Unlike standard siphash, the subkeys seed
//   the internal state directly (no IV xor construction), so a generic
//   siphash library cannot substitute.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package siphash

import "math/bits"

// Block computes one siphash-2-4 block over nonce with the state seeded
// directly from the four subkeys. Pure function, total over its domain.
//
//go:nosplit
//go:inline
//go:registerparams
func Block(k0, k1, k2, k3, nonce uint64) uint64 {
	v0, v1, v2, v3 := k0, k1, k2, k3

	v3 ^= nonce
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0 ^= nonce
	v2 ^= 0xff
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)

	return v0 ^ v1 ^ v2 ^ v3
}

// round is one sipround permutation.
//
//go:nosplit
//go:inline
//go:registerparams
func round(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = bits.RotateLeft64(v1, 13)
	v1 ^= v0
	v0 = bits.RotateLeft64(v0, 32)
	v2 += v3
	v3 = bits.RotateLeft64(v3, 16)
	v3 ^= v2
	v0 += v3
	v3 = bits.RotateLeft64(v3, 21)
	v3 ^= v0
	v2 += v1
	v1 = bits.RotateLeft64(v1, 17)
	v1 ^= v2
	v2 = bits.RotateLeft64(v2, 32)
	return v0, v1, v2, v3
}
