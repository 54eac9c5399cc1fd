// Package solver tests: the façade contract end to end — planted-cycle
// recovery, determinism, backend equivalence, overflow handling, and
// resolver validation.
package solver

import (
	"bytes"
	"testing"

	"cuckatoo/buckets"
	"cuckatoo/edgegen"
)

// -----------------------------------------------------------------------------
// ░░ Fixtures ░░
// -----------------------------------------------------------------------------

func testParams() Params {
	return Params{
		EdgeBits:     8,
		BucketBits:   2,
		CycleLength:  42,
		TrimRounds:   64,
		SearchBudget: 1 << 22,
		Workers:      4,
	}
}

// plantedSource embeds one 42-cycle (edges 0..41) in a 2^8-edge graph;
// everything else is leaf noise.
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
		u[i] = uint32(30 + i - 42)
		v[i] = uint32(30 + i - 42)
	}
	return edgegen.NewTableSource(u, v, edgeBits)
}

// cyclelessSource is all leaves: the pipeline must report zero solutions
// and terminate inside its budgets.
func cyclelessSource(t *testing.T) *edgegen.TableSource {
	t.Helper()
	const edgeBits = 8
	n := 1 << edgeBits
	u := make([]uint32, n)
	v := make([]uint32, n)
	for i := range u {
		u[i] = uint32(i)
		v[i] = uint32(i)
	}
	return edgegen.NewTableSource(u, v, edgeBits)
}

func solutionKey(r Resolved) string {
	var b bytes.Buffer
	for _, n := range r.Nonces {
		var tmp [8]byte
		for i := range tmp {
			tmp[i] = byte(n >> (8 * i))
		}
		b.Write(tmp[:])
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// ░░ Planted Scenario ░░
// -----------------------------------------------------------------------------

func TestEngineFindsPlantedCycle(t *testing.T) {
	e := NewEngine(testParams())
	e.SetKey(plantedSource(t))

	sols, err := e.BuildGraph()
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(sols) != 1 {
		t.Fatalf("found %d cycles, want the planted one", len(sols))
	}

	resolved, err := e.Resolve(sols)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("resolved %d candidates, want 1", len(resolved))
	}
	for i, n := range resolved[0].Nonces {
		if n != uint64(i) {
			t.Fatalf("canonical nonce[%d] = %d, want %d (planted cycle is edges 0..41)", i, n, i)
		}
	}
}

func TestEngineCyclelessGraphReportsNothing(t *testing.T) {
	e := NewEngine(testParams())
	e.SetKey(cyclelessSource(t))
	sols, err := e.BuildGraph()
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(sols) != 0 {
		t.Fatalf("cycle-free graph produced %d solutions", len(sols))
	}
}

// -----------------------------------------------------------------------------
// ░░ Determinism ░░
// -----------------------------------------------------------------------------

func TestBuildGraphDeterministic(t *testing.T) {
	p := testParams()
	key := edgegen.NewKey([4]uint64{0xdead, 0xbeef, 0xcafe, 0xf00d}, p.EdgeBits)

	e := NewEngine(p)
	e.SetKey(key)
	first, err := e.BuildGraph()
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := e.BuildGraph()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("repeated solve differs: %d vs %d cycles", len(first), len(second))
	}
}

// -----------------------------------------------------------------------------
// ░░ Backend Equivalence ░░
// -----------------------------------------------------------------------------

func TestBackendEquivalence(t *testing.T) {
	p := testParams()
	sources := []edgegen.Source{
		plantedSource(t),
		cyclelessSource(t),
		edgegen.NewKey([4]uint64{1, 2, 3, 4}, p.EdgeBits),
	}

	for si, src := range sources {
		cpu := NewEngine(p)
		cpu.SetKey(src)
		acc := NewDispatchEngine(p)
		acc.SetKey(src)

		cpuSols, err := cpu.BuildGraph()
		if err != nil {
			t.Fatalf("source %d cpu: %v", si, err)
		}
		accSols, err := acc.BuildGraph()
		if err != nil {
			t.Fatalf("source %d dispatch: %v", si, err)
		}

		cpuRes, _ := cpu.Resolve(cpuSols)
		accRes, _ := acc.Resolve(accSols)
		if len(cpuRes) != len(accRes) {
			t.Fatalf("source %d: backends found %d vs %d cycles", si, len(cpuRes), len(accRes))
		}

		want := make(map[string]bool, len(cpuRes))
		for _, r := range cpuRes {
			want[solutionKey(r)] = true
		}
		for _, r := range accRes {
			if !want[solutionKey(r)] {
				t.Fatalf("source %d: dispatch backend found a cycle the cpu oracle did not", si)
			}
		}
	}
}

// -----------------------------------------------------------------------------
// ░░ Failure Modes ░░
// -----------------------------------------------------------------------------

func TestBuildGraphWithoutKey(t *testing.T) {
	e := NewEngine(testParams())
	if _, err := e.BuildGraph(); err != ErrNoKey {
		t.Fatalf("BuildGraph without key = %v, want ErrNoKey", err)
	}
	if _, err := e.Resolve(nil); err != ErrNoKey {
		t.Fatalf("Resolve without key = %v, want ErrNoKey", err)
	}
}

func TestBuildGraphOverflowAbandonsAttempt(t *testing.T) {
	// Adversarial source collapsing everything into bucket 0: the
	// attempt must fail with ErrOverflow, not truncate or corrupt.
	const edgeBits = 8
	n := 1 << edgeBits
	u := make([]uint32, n)
	v := make([]uint32, n)
	for i := range u {
		u[i] = uint32(i) % 4
		v[i] = uint32(i)
	}
	e := NewEngine(testParams())
	e.SetKey(edgegen.NewTableSource(u, v, edgeBits))

	if _, err := e.BuildGraph(); err != buckets.ErrOverflow {
		t.Fatalf("BuildGraph = %v, want buckets.ErrOverflow", err)
	}

	// The engine must be reusable for the next nonce afterwards.
	e.SetKey(plantedSource(t))
	sols, err := e.BuildGraph()
	if err != nil || len(sols) != 1 {
		t.Fatalf("engine unusable after overflow: sols=%d err=%v", len(sols), err)
	}
}

func TestParamsFor(t *testing.T) {
	p31, err := ParamsFor("C31")
	if err != nil || p31.EdgeBits != 31 || p31.CycleLength != 42 {
		t.Fatalf("C31 params = %+v, %v", p31, err)
	}
	p32, err := ParamsFor("C32")
	if err != nil || p32.EdgeBits != 32 || p32.TrimRounds <= p31.TrimRounds {
		t.Fatalf("C32 params = %+v, %v (larger graphs get more rounds)", p32, err)
	}
	if _, err := ParamsFor("C29"); err != ErrBadAlgo {
		t.Fatalf("bad selector = %v, want ErrBadAlgo", err)
	}
}
