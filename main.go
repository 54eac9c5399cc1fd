// ════════════════════════════════════════════════════════════════════════════════════════════════
// Cuckatoo Mining Client - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Main Entry Point & Session Orchestration
//
// Description:
//   Driver for the C31/C32 proof-of-work solver. Parses the operator's
//   arguments, binds the solver backend for the selected algorithm, then
//   runs the session loop: connect → login → poll jobs → solve nonces →
//   submit solutions, reconnecting unconditionally after connection loss.
//
// Architecture:
//   - Phase 0: Argument validation and solver construction
//   - Phase 1: Signal handling and journal setup
//   - Phase 2: Reconnect loop wrapping the per-session mining loop
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cuckatoo/buckets"
	"cuckatoo/constants"
	"cuckatoo/control"
	"cuckatoo/debug"
	"cuckatoo/sollog"
	"cuckatoo/solver"
	"cuckatoo/stratum"
	"cuckatoo/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// config is everything the operator controls from the command line.
type config struct {
	nodeAddr string
	login    string
	pass     string
	algo     string
}

// parseArgs validates the -key value argument pairs. Any defect is fatal
// at startup: report and exit non-zero, no retry.
func parseArgs(args []string) (config, bool) {
	cfg := config{}
	if len(args) < 2 || len(args)%2 != 0 {
		return cfg, false
	}
	for i := 1; i < len(args); i += 2 {
		key, value := args[i-1], args[i]
		switch key {
		case "-node":
			if !strings.Contains(value, ":") {
				utils.PrintWarning("Invalid node address. Use <host:port> format.\n")
				return cfg, false
			}
			portStr := value[strings.LastIndex(value, ":")+1:]
			if _, err := strconv.Atoi(portStr); err != nil {
				utils.PrintWarning("Invalid node port: " + portStr + "\n")
				return cfg, false
			}
			cfg.nodeAddr = value
		case "-login":
			cfg.login = value
		case "-pass":
			cfg.pass = value
		case "-algo":
			cfg.algo = value
		default:
			utils.PrintWarning("Unknown argument: " + key + "\n")
			return cfg, false
		}
	}
	if cfg.nodeAddr == "" {
		utils.PrintWarning("Please define -node host:port to connect to.\n")
		return cfg, false
	}
	if cfg.login == "" {
		utils.PrintWarning("Please define -login to authenticate with.\n")
		return cfg, false
	}
	if cfg.algo != "C31" && cfg.algo != "C32" {
		utils.PrintWarning("Invalid algorithm. Must be C31 or C32.\n")
		return cfg, false
	}
	return cfg, true
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	// PHASE 0: Argument validation and solver construction.
	cfg, ok := parseArgs(os.Args[1:])
	if !ok {
		utils.PrintWarning("Usage: " + os.Args[0] +
			" -node <host:port> -login <user_name> [-pass <password>] -algo <C31|C32>\n")
		os.Exit(1)
	}

	params, err := solver.ParamsFor(cfg.algo)
	if err != nil {
		debug.DropError("INIT", err)
		os.Exit(1)
	}
	eng := solver.NewEngine(params)

	debug.DropMessage("INIT", "node "+cfg.nodeAddr+", login "+cfg.login+", algorithm "+cfg.algo)

	// PHASE 1: Signal handling and solution journal.
	setupSignalHandling()

	journal, err := sollog.Open("solutions.db")
	if err != nil {
		// Mining works without the journal; the operator just loses
		// local bookkeeping.
		debug.DropError("JOURNAL", err)
		journal = nil
	} else {
		defer journal.Close()
	}

	// PHASE 2: Reconnect loop. Connection loss is recoverable; retry
	// the whole session after a fixed back-off until shutdown.
	for !control.Stopping() {
		debug.DropMessage("NET", "connecting to the node...")
		session, err := stratum.Dial(cfg.nodeAddr)
		if err != nil {
			debug.DropError("NET", err)
			debug.DropMessage("NET", "unable to connect, retrying in "+
				utils.Itoa(int(constants.ReconnectDelay/time.Second))+"s")
			sleepInterruptible(constants.ReconnectDelay)
			continue
		}

		session.Start()
		session.SendLogin(cfg.login, cfg.pass)

		mineSession(session, eng, params, journal)

		session.Close()
	}

	control.ShutdownWG.Wait()
	debug.DropMessage("EXIT", "miner stopped")
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MINING LOOP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// mineSession runs nonce attempts against one connection until it drops
// or shutdown is requested. The shutdown flag is polled at attempt
// boundaries only — a trimming pass underway always completes.
func mineSession(session *stratum.Session, eng *solver.Engine, params solver.Params, journal *sollog.Journal) {
	lastKeepAlive := time.Now()
	lastJobRequest := time.Now().Add(-constants.JobRequestInterval)

	for session.Running() && !control.Stopping() {
		now := time.Now()
		if now.Sub(lastKeepAlive) > constants.KeepAliveInterval {
			session.SendKeepAlive()
			lastKeepAlive = now
		}

		job := session.ActiveJob()
		if !job.Valid() {
			if now.Sub(lastJobRequest) > constants.JobRequestInterval {
				debug.DropMessage("JOB", "job pool is empty, requesting a new job from the node")
				session.SendGetJob()
				lastJobRequest = now
			}
			time.Sleep(constants.IdlePoll)
			continue
		}

		nonce := rand.Uint64()
		debug.DropMessage("SOLVE", "starting job "+utils.Utoa(job.JobID)+
			" height "+utils.Utoa(job.Height)+
			" difficulty "+utils.Utoa(job.Difficulty)+
			" nonce "+utils.Utoa(nonce))

		key, err := job.DeriveKey(nonce, params.EdgeBits)
		if err != nil {
			debug.DropError("SOLVE", err)
			time.Sleep(constants.IdlePoll)
			continue
		}

		control.BeginAttempt()
		eng.SetKey(key)
		sols, err := eng.BuildGraph()
		control.EndAttempt()

		if err == buckets.ErrOverflow {
			// Pathological key skew: abandon this nonce cleanly and
			// move to the next. Expected, benign, frequent enough to
			// stay off the operator console.
			continue
		}
		if err != nil {
			debug.DropError("SOLVE", err)
			continue
		}
		if len(sols) == 0 {
			continue
		}

		resolved, err := eng.Resolve(sols)
		if err != nil {
			debug.DropError("RESOLVE", err)
			continue
		}

		for _, r := range resolved {
			debug.DropMessage("FOUND", "solution for height "+utils.Utoa(job.Height)+
				"  hash "+utils.Hex(r.Hash[:]))
			session.SendSubmit(params.EdgeBits, job, nonce, r.Nonces)
			if journal != nil {
				if jerr := journal.Record(job.JobID, job.Height, nonce, r.Hash[:], r.Nonces); jerr != nil {
					debug.DropError("JOURNAL", jerr)
				}
			}
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SYSTEM LIFECYCLE MANAGEMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// setupSignalHandling wires SIGINT/SIGTERM to the cooperative shutdown
// flag. The solve loop finishes its current attempt, the session loops
// drain, and main exits through the normal path.
func setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		debug.DropMessage("SIGNAL", "exiting the miner, please wait...")
		control.Shutdown()
	}()
}

// sleepInterruptible waits out d in small slices so shutdown does not
// hang on the reconnect back-off.
func sleepInterruptible(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) && !control.Stopping() {
		time.Sleep(constants.IdlePoll)
	}
}
