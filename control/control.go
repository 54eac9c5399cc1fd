// control.go — Global control flags for cooperative miner shutdown
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides lightweight global signaling infrastructure for
// coordinating solve activity and graceful shutdown across the stratum
// session threads and the solve loop.
//
// Architecture overview:
//   • Global stop flag for lock-free inter-thread communication
//   • Solve-activity flag so the session layer can tell whether an
//     attempt is in flight
//   • Graceful shutdown: the flag is polled at attempt boundaries only —
//     a trimming round already underway always runs to completion
//
// Threading model:
//   • Signal handler calls Shutdown() exactly once
//   • Solve loop polls Stopping() between nonce attempts
//   • Session reader/writer poll Stopping() between messages
//   • ShutdownWG tracks subsystems that need to drain before exit

package control

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	stop    atomic.Uint32 // 1 = initiate graceful shutdown
	solving atomic.Uint32 // 1 = a solve attempt is in flight
)

// ShutdownWG coordinates subsystem teardown. Each long-lived goroutine
// (session reader, session writer) registers here and the signal path
// waits for all of them before the process exits.
var ShutdownWG sync.WaitGroup

// ============================================================================
// SHUTDOWN COORDINATION
// ============================================================================

// Shutdown initiates graceful termination. Idempotent.
//
//go:nosplit
//go:inline
func Shutdown() {
	stop.Store(1)
}

// Stopping reports whether shutdown has been requested. Polled at attempt
// boundaries and inside the reconnect loop — never mid-round.
//
//go:nosplit
//go:inline
func Stopping() bool {
	return stop.Load() == 1
}

// ============================================================================
// SOLVE ACTIVITY TRACKING
// ============================================================================

// BeginAttempt marks a solve attempt as in flight.
//
//go:nosplit
//go:inline
func BeginAttempt() {
	solving.Store(1)
}

// EndAttempt marks the current solve attempt as finished.
//
//go:nosplit
//go:inline
func EndAttempt() {
	solving.Store(0)
}

// Solving reports whether an attempt is currently in flight.
//
//go:nosplit
//go:inline
func Solving() bool {
	return solving.Load() == 1
}
