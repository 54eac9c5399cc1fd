// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Graph parameters & session tunables
//
// Purpose:
//   - Defines the Cuckatoo parameter sets bound at solver construction.
//   - Session cadence constants mirror the node's expectations.
//
// Notes:
//   - Bit-packed bucket layouts are derived from these values; they are
//     compile-time constants, never runtime-tunable.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import "time"

// ──────────────────────────── Graph Parameters ─────────────────────────────

const (
	// CycleLength is the proof size: a solution is a simple cycle of
	// exactly this many edges, alternating between the two partitions.
	CycleLength = 42

	// BucketBits selects how many high bits of a u-side node id key its
	// bucket. 2^9 = 512 buckets keeps a bucket's rows cache-resident at
	// C31/C32 scale while leaving enough buckets to feed every worker.
	BucketBits = 9

	// C31EdgeBits / C32EdgeBits are the two supported graph widths.
	// 2^31 and 2^32 edges respectively; node ids are edge_bits wide
	// per partition.
	C31EdgeBits = 31
	C32EdgeBits = 32

	// C31TrimRounds / C32TrimRounds bound the leaf-trimming fixed-point
	// iteration. Larger graphs need more rounds to shake out their
	// leaves; overshooting only costs time, never correctness, so both
	// budgets are generous.
	C31TrimRounds = 128
	C32TrimRounds = 160

	// ResidualBudget caps the cycle finder's DFS step count. Survivor
	// sets after a converged trim are a few thousand edges; a budget of
	// 1<<24 steps covers even a badly under-trimmed residual before the
	// finder gives up and reports no solutions.
	ResidualBudget = 1 << 24
)

// ─────────────────────────── Bucket Capacity Policy ────────────────────────

const (
	// BucketSlackNum/Den over-provision each bucket above the expected
	// mean row count (edges/buckets). 9/8 = +12.5% absorbs ordinary
	// sip distribution skew without a grow.
	BucketSlackNum = 9
	BucketSlackDen = 8

	// BucketGrowLimit caps bucket growth at this multiple of the mean.
	// A key skewed past 2× the mean is pathological; the attempt is
	// abandoned cleanly rather than ballooning memory.
	BucketGrowLimit = 2
)

// ──────────────────────────── Session Cadence ──────────────────────────────

const (
	// KeepAliveInterval matches the node's idle-disconnect horizon.
	KeepAliveInterval = 20 * time.Second

	// JobRequestInterval throttles getjobtemplate requests while the
	// job slot is empty.
	JobRequestInterval = 5 * time.Second

	// IdlePoll is the sleep between job-slot polls when no job is
	// available.
	IdlePoll = 100 * time.Millisecond

	// ReconnectDelay is the fixed back-off before re-dialing after a
	// connection loss. Unconditional retry, no exponential schedule.
	ReconnectDelay = 30 * time.Second
)

// ───────────────────────────── Stratum I/O ─────────────────────────────────

const (
	// SendQueueDepth bounds the writer goroutine's outbound queue.
	// Keepalives and submissions are rare; 64 slots is 10× headroom.
	SendQueueDepth = 64

	// MaxLineBytes bounds a single JSON-RPC line from the node.
	// pre_pow headers are <1 KiB; 1 MiB tolerates verbose responses.
	MaxLineBytes = 1 << 20

	// SocketBuffer sizes the TCP read/write buffers.
	SocketBuffer = 1 << 16
)
