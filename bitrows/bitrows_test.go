// Package bitrows boundary tests. Cell isolation is the primary source of
// subtle solver corruption, so every width gets exhaustive neighbor checks.
package bitrows

import (
	"testing"

	"cuckatoo/utils"
)

// mixStream is the deterministic value stream the stress fixtures draw
// from: successive splitmix64 finalizations of a counter.
type mixStream struct{ ctr uint64 }

func (m *mixStream) next() uint64 {
	m.ctr++
	return utils.Mix64(m.ctr)
}

func (m *mixStream) intn(n int) int {
	return int(m.next() % uint64(n))
}

// -----------------------------------------------------------------------------
// ░░ Construction Semantics ░░
// -----------------------------------------------------------------------------

func TestNewRowsSizing(t *testing.T) {
	r := NewRows(100, 31)
	if r.Count() != 100 || r.Width() != 31 {
		t.Fatalf("count/width = %d/%d, want 100/31", r.Count(), r.Width())
	}
	if r.Max() != (1<<31)-1 {
		t.Fatalf("max = %x, want %x", r.Max(), uint64(1<<31)-1)
	}
}

func TestNewRowsWidth64(t *testing.T) {
	r := NewRows(4, 64)
	if r.Max() != ^uint64(0) {
		t.Fatalf("width-64 max = %x", r.Max())
	}
	r.Set(3, ^uint64(0))
	if got := r.Get(3); got != ^uint64(0) {
		t.Fatalf("width-64 round trip = %x", got)
	}
}

func TestNewRowsBadWidth(t *testing.T) {
	for _, w := range []uint{0, 65} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("width %d must panic", w)
				}
			}()
			NewRows(1, w)
		}()
	}
}

// -----------------------------------------------------------------------------
// ░░ Cell Isolation — Exhaustive Boundary Sweep ░░
// -----------------------------------------------------------------------------

// TestCellIsolationAllWidths writes the maximum representable value into a
// cell, then slams both bit-adjacent neighbors, and verifies no read-back
// anywhere in the array changed except where written. Every width 1..64 is
// swept so every straddle alignment gets exercised.
func TestCellIsolationAllWidths(t *testing.T) {
	const cells = 131 // prime count ⇒ all word offsets visited
	for width := uint(1); width <= 64; width++ {
		r := NewRows(cells, width)
		ref := make([]uint64, cells)

		for i := 0; i < cells; i++ {
			r.Set(i, r.Max())
			ref[i] = r.Max()

			// Hammer the bit-adjacent neighbors.
			if i > 0 {
				r.Set(i-1, 0)
				ref[i-1] = 0
			}
			if i < cells-1 {
				v := r.Max() & 0x5555555555555555
				r.Set(i+1, v)
				ref[i+1] = v
			}

			for j := 0; j < cells; j++ {
				if got := r.Get(j); got != ref[j] {
					t.Fatalf("width %d: cell %d corrupted after writing %d: got %x want %x",
						width, j, i, got, ref[j])
				}
			}
		}
	}
}

func TestCellStraddleAlignment(t *testing.T) {
	// Width 31 cells straddle a word boundary every couple of cells;
	// verify a straddled write round-trips and leaves both word
	// neighbors intact.
	r := NewRows(64, 31)
	for i := 0; i < 64; i++ {
		r.Set(i, uint64(i)*0x01010101&r.Max())
	}
	for i := 0; i < 64; i++ {
		want := uint64(i) * 0x01010101 & r.Max()
		if got := r.Get(i); got != want {
			t.Fatalf("cell %d = %x, want %x", i, got, want)
		}
	}
}

// -----------------------------------------------------------------------------
// ░░ Out-Of-Range Writes ░░
// -----------------------------------------------------------------------------

func TestSetOutOfRangePanics(t *testing.T) {
	r := NewRows(8, 5)
	defer func() {
		if recover() == nil {
			t.Fatal("out-of-range cell write must panic, never wrap")
		}
	}()
	r.Set(0, 32) // width 5 ⇒ max 31
}

// -----------------------------------------------------------------------------
// ░░ Grow Semantics ░░
// -----------------------------------------------------------------------------

func TestGrowPreservesCells(t *testing.T) {
	r := NewRows(33, 13)
	rng := &mixStream{ctr: 1}
	vals := make([]uint64, 33)
	for i := range vals {
		vals[i] = rng.next() & r.Max()
		r.Set(i, vals[i])
	}
	g := r.Grow(100)
	if g.Count() != 100 {
		t.Fatalf("grown count = %d", g.Count())
	}
	for i, want := range vals {
		if got := g.Get(i); got != want {
			t.Fatalf("cell %d lost in grow: got %x want %x", i, got, want)
		}
	}
	g.Set(99, g.Max())
	if got := g.Get(99); got != g.Max() {
		t.Fatalf("new tail cell = %x", got)
	}
}

func TestGrowShrinkPanics(t *testing.T) {
	r := NewRows(10, 8)
	defer func() {
		if recover() == nil {
			t.Fatal("shrinking Grow must panic")
		}
	}()
	r.Grow(5)
}

// -----------------------------------------------------------------------------
// ░░ Randomized Mirror Stress ░░
// -----------------------------------------------------------------------------

func TestRowsMirrorStress(t *testing.T) {
	rng := &mixStream{ctr: 42}
	for trial := 0; trial < 20; trial++ {
		width := uint(rng.intn(64) + 1)
		count := rng.intn(500) + 1
		r := NewRows(count, width)
		ref := make([]uint64, count)
		for op := 0; op < 5000; op++ {
			i := rng.intn(count)
			v := rng.next() & r.Max()
			r.Set(i, v)
			ref[i] = v
			j := rng.intn(count)
			if got := r.Get(j); got != ref[j] {
				t.Fatalf("trial %d width %d: cell %d = %x, want %x", trial, width, j, got, ref[j])
			}
		}
	}
}
