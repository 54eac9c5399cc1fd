// ════════════════════════════════════════════════════════════════════════════════════════════════
// SOLVER FAÇADE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Backend Contract & Pipeline Orchestration
//
// Description:
//   The stable three-operation contract every solver backend implements:
//   bind a graph key, run generate→bucket→trim→search, resolve candidate
//   cycles into submittable nonce lists. The CPU engine stripes bucket
//   work across a worker pool; the dispatch engine expresses the same
//   rounds as one flat dispatch over all buckets — the structure an
//   accelerator backend must mirror to stay a drop-in alternative, and
//   the property the equivalence tests pin down.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package solver

import (
	"errors"
	"runtime"

	"cuckatoo/buckets"
	"cuckatoo/constants"
	"cuckatoo/cycle"
	"cuckatoo/edgegen"
	"cuckatoo/trim"
)

// ErrNoKey reports BuildGraph called before SetKey.
var ErrNoKey = errors.New("solver: no graph key bound")

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONTRACT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Resolved is one submittable solution: the canonical ascending nonce
// list plus its quick-look verification hash.
type Resolved struct {
	Nonces []uint64
	Hash   [32]byte
}

// Solver is the backend contract. Implementations must produce equivalent
// cycle sets for the same key, modulo ordering.
type Solver interface {
	// SetKey binds the endpoint source for the next attempt. The
	// source is owned by one in-flight attempt; a new job simply binds
	// a new source before the next attempt.
	SetKey(src edgegen.Source)

	// BuildGraph runs the full bucket→trim→search pipeline and returns
	// zero or more candidate cycles. buckets.ErrOverflow means the
	// attempt was abandoned cleanly; move to the next nonce.
	BuildGraph() ([]cycle.Solution, error)

	// Resolve validates candidates and maps each surviving cycle to
	// its canonical nonce list and verification hash.
	Resolve(sols []cycle.Solution) ([]Resolved, error)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PARAMETERS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Params fixes a backend's graph geometry at construction time — the
// bit-packed layouts derive from these, so they are never runtime-tunable.
type Params struct {
	EdgeBits     uint32
	BucketBits   uint32
	CycleLength  int
	TrimRounds   int
	SearchBudget int
	Workers      int
}

// ErrBadAlgo reports an unknown algorithm selector.
var ErrBadAlgo = errors.New("solver: algorithm must be C31 or C32")

// ParamsFor maps an algorithm selector to its bound parameter set.
func ParamsFor(algo string) (Params, error) {
	switch algo {
	case "C31":
		return Params{
			EdgeBits:     constants.C31EdgeBits,
			BucketBits:   constants.BucketBits,
			CycleLength:  constants.CycleLength,
			TrimRounds:   constants.C31TrimRounds,
			SearchBudget: constants.ResidualBudget,
			Workers:      runtime.NumCPU(),
		}, nil
	case "C32":
		return Params{
			EdgeBits:     constants.C32EdgeBits,
			BucketBits:   constants.BucketBits,
			CycleLength:  constants.CycleLength,
			TrimRounds:   constants.C32TrimRounds,
			SearchBudget: constants.ResidualBudget,
			Workers:      runtime.NumCPU(),
		}, nil
	}
	return Params{}, ErrBadAlgo
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SHARED PIPELINE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// pipeline is the backend-independent solve machinery. Bucket storage is
// allocated once and reused across attempts.
type pipeline struct {
	params  Params
	set     *buckets.Set
	trimmer *trim.Trimmer
	src     edgegen.Source
}

func newPipeline(p Params, disp trim.Dispatcher) pipeline {
	set := buckets.New(p.EdgeBits, p.BucketBits)
	return pipeline{
		params:  p,
		set:     set,
		trimmer: trim.New(set, p.TrimRounds, disp),
	}
}

// SetKey binds the endpoint source for the next attempt.
func (pl *pipeline) SetKey(src edgegen.Source) {
	if src.EdgeBits() != pl.params.EdgeBits {
		panic("solver: source width does not match backend geometry")
	}
	pl.src = src
}

// BuildGraph runs bucket fill, trimming rounds, and cycle search.
func (pl *pipeline) BuildGraph() ([]cycle.Solution, error) {
	if pl.src == nil {
		return nil, ErrNoKey
	}

	if err := pl.set.Fill(pl.src); err != nil {
		return nil, err
	}

	pl.trimmer.Run(pl.src)

	survivors := pl.collect()
	finder := cycle.NewFinder(pl.params.CycleLength, pl.params.SearchBudget)
	return finder.Find(survivors), nil
}

// collect gathers the residual edge set with full endpoint triples. The v
// side is regenerated from the key one last time; survivor counts are
// thousands, so the hashing cost is noise.
func (pl *pipeline) collect() []cycle.Edge {
	var out []cycle.Edge
	for b := 0; b < pl.set.NumBuckets(); b++ {
		for j := 0; j < pl.set.Len(b); j++ {
			if !pl.set.Live(b, j) {
				continue
			}
			idx := pl.set.EdgeIndex(b, j)
			_, v := pl.src.Endpoints(idx)
			out = append(out, cycle.Edge{
				Idx: idx,
				U:   pl.set.NodeU(b, j),
				V:   v,
			})
		}
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// BACKENDS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Engine is the CPU reference backend: trimming rounds run on a fixed
// worker pool striped across buckets.
type Engine struct {
	pipeline
}

// NewEngine builds the CPU backend.
func NewEngine(p Params) *Engine {
	w := p.Workers
	if w < 1 {
		w = 1
	}
	return &Engine{pipeline: newPipeline(p, trim.Pool{Workers: w})}
}

// DispatchEngine is the accelerator-shaped backend: each phase of each
// round is one flat dispatch over all buckets, the barrier structure a
// GPU kernel grid provides natively. It is the reference oracle's
// equivalence partner in tests and the template for a real device
// offload.
type DispatchEngine struct {
	pipeline
}

// NewDispatchEngine builds the dispatch-per-round backend.
func NewDispatchEngine(p Params) *DispatchEngine {
	return &DispatchEngine{pipeline: newPipeline(p, trim.Grid{})}
}
