// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path operator narration (zero-alloc)
//
// Purpose:
//   - Narrates connection and job lifecycle events to the operator.
//   - Logs infrequent error paths without introducing heap pressure.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - Uses stackless logging model: no alloc, no interfaces.
//
// ⚠️ Never invoke inside trimming rounds — attempt boundaries only.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "cuckatoo/utils"

// DropError logs error messages with a custom alloc-free print strategy.
// It writes directly to stderr (file descriptor 2), bypassing any heap
// allocations.
//
//go:nosplit
//go:inline
//go:registerparams
func DropError(prefix string, err error) {
	if err != nil {
		msg := prefix + ": " + err.Error() + "\n"
		utils.PrintWarning(msg)
	} else {
		msg := prefix + "\n"
		utils.PrintWarning(msg)
	}
}

// DropMessage logs lifecycle messages with zero-allocation print strategy.
// Used for cold-path diagnostics: connects, jobs, found solutions.
// Narration goes to stdout; stderr is reserved for DropError.
//
//go:nosplit
//go:inline
//go:registerparams
func DropMessage(prefix, message string) {
	msg := prefix + ": " + message + "\n"
	utils.PrintInfo(msg)
}
