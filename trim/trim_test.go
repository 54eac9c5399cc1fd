// Package trim tests: monotonicity, convergence detection, planted-cycle
// survival, and pool/grid dispatcher agreement.
package trim

import (
	"testing"

	"cuckatoo/buckets"
	"cuckatoo/edgegen"
)

// -----------------------------------------------------------------------------
// ░░ Fixtures ░░
// -----------------------------------------------------------------------------

// plantedSource builds a 2^8-edge table graph holding one 42-cycle
// (edges 0..41 over u0..u20 / v0..v20) plus all-leaf noise that a correct
// trimmer must remove completely.
func plantedSource(t *testing.T) *edgegen.TableSource {
	t.Helper()
	const edgeBits = 8
	n := 1 << edgeBits
	u := make([]uint32, n)
	v := make([]uint32, n)

	for k := 0; k < 21; k++ {
		u[2*k] = uint32(k)
		v[2*k] = uint32(k)
		u[2*k+1] = uint32((k + 1) % 21)
		v[2*k+1] = uint32(k)
	}
	for i := 42; i < n; i++ {
		u[i] = uint32(30 + i - 42) // unique ⇒ every noise edge is a leaf
		v[i] = uint32(30 + i - 42)
	}
	return edgegen.NewTableSource(u, v, edgeBits)
}

// leafSource builds a graph where every node has degree exactly 1, so a
// correct trimmer removes every edge.
func leafSource(t *testing.T, edgeBits uint32) *edgegen.TableSource {
	t.Helper()
	n := 1 << edgeBits
	u := make([]uint32, n)
	v := make([]uint32, n)
	for i := range u {
		u[i] = uint32(i)
		v[i] = uint32(i)
	}
	return edgegen.NewTableSource(u, v, edgeBits)
}

func fill(t *testing.T, src edgegen.Source, bucketBits uint32) *buckets.Set {
	t.Helper()
	s := buckets.New(src.EdgeBits(), bucketBits)
	if err := s.Fill(src); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	return s
}

// -----------------------------------------------------------------------------
// ░░ Full-Leaf Graph ░░
// -----------------------------------------------------------------------------

func TestTrimRemovesAllLeaves(t *testing.T) {
	src := leafSource(t, 9)
	set := fill(t, src, 3)
	stats := New(set, 64, Pool{Workers: 4}).Run(src)
	if stats.Live != 0 {
		t.Fatalf("all-leaf graph left %d live edges", stats.Live)
	}
	if !stats.Converged {
		t.Fatal("all-leaf graph should converge well inside the budget")
	}
}

// -----------------------------------------------------------------------------
// ░░ Planted Cycle Survival ░░
// -----------------------------------------------------------------------------

func TestTrimPreservesPlantedCycle(t *testing.T) {
	src := plantedSource(t)
	set := fill(t, src, 2)
	stats := New(set, 64, Pool{Workers: 4}).Run(src)

	if stats.Live != 42 {
		t.Fatalf("residual = %d edges, want exactly the planted 42", stats.Live)
	}
	// Every survivor must be one of the planted cycle edges 0..41.
	for b := 0; b < set.NumBuckets(); b++ {
		for j := 0; j < set.Len(b); j++ {
			if set.Live(b, j) && set.EdgeIndex(b, j) >= 42 {
				t.Fatalf("noise edge %d survived trimming", set.EdgeIndex(b, j))
			}
		}
	}
}

// -----------------------------------------------------------------------------
// ░░ Monotonicity ░░
// -----------------------------------------------------------------------------

func TestTrimMonotonicity(t *testing.T) {
	src := edgegen.NewKey([4]uint64{101, 202, 303, 404}, 12)
	set := fill(t, src, 4)
	tr := New(set, 1, Pool{Workers: 2})

	prev := set.LiveCount()
	// Re-running single-round trims must never raise the live count.
	for r := 0; r < 30; r++ {
		tr.Run(src)
		cur := set.LiveCount()
		if cur > prev {
			t.Fatalf("round %d raised live count %d → %d", r, prev, cur)
		}
		prev = cur
	}
}

// -----------------------------------------------------------------------------
// ░░ Budget & Convergence ░░
// -----------------------------------------------------------------------------

func TestTrimRespectsBudget(t *testing.T) {
	src := edgegen.NewKey([4]uint64{1, 2, 3, 4}, 11)
	set := fill(t, src, 3)
	stats := New(set, 5, Pool{Workers: 2}).Run(src)
	if stats.Rounds > 5 {
		t.Fatalf("ran %d rounds past a budget of 5", stats.Rounds)
	}
}

func TestTrimConvergenceStops(t *testing.T) {
	src := plantedSource(t)
	set := fill(t, src, 2)
	stats := New(set, 10_000, Pool{Workers: 2}).Run(src)
	if !stats.Converged {
		t.Fatal("planted graph must reach a fixed point")
	}
	if stats.Rounds >= 10_000 {
		t.Fatal("fixed point not detected before budget exhaustion")
	}
}

// -----------------------------------------------------------------------------
// ░░ Dispatcher Agreement ░░
// -----------------------------------------------------------------------------

func TestPoolAndGridAgree(t *testing.T) {
	src := edgegen.NewKey([4]uint64{77, 88, 99, 111}, 12)

	setA := fill(t, src, 4)
	statsA := New(setA, 60, Pool{Workers: 4}).Run(src)

	setB := fill(t, src, 4)
	statsB := New(setB, 60, Grid{}).Run(src)

	if statsA.Live != statsB.Live {
		t.Fatalf("pool and grid disagree on residual: %d vs %d", statsA.Live, statsB.Live)
	}
	for b := 0; b < setA.NumBuckets(); b++ {
		if setA.Len(b) != setB.Len(b) {
			t.Fatalf("bucket %d row counts differ", b)
		}
		for j := 0; j < setA.Len(b); j++ {
			if setA.Live(b, j) != setB.Live(b, j) {
				t.Fatalf("bucket %d row %d liveness differs between dispatchers", b, j)
			}
		}
	}
}
