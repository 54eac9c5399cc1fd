// ════════════════════════════════════════════════════════════════════════════════════════════════
// STRATUM SESSION
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Cuckatoo Mining Client
// Component: Node Connection & Job Lifecycle
//
// Description:
//   Newline-delimited JSON-RPC over raw TCP to the mining node. A reader
//   goroutine consumes job/response messages and maintains the atomic
//   "current job" slot the solve loop polls; a writer goroutine drains the
//   outbound queue (login, keepalive, getjobtemplate, submit). The solve
//   engine holds no network state: connection loss surfaces as the session
//   no longer running, and the driver reconnects after a fixed back-off.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package stratum

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"cuckatoo/constants"
	"cuckatoo/control"
	"cuckatoo/debug"
	"cuckatoo/edgegen"
	"cuckatoo/utils"

	"github.com/pkg/errors"
	"github.com/sugawarayuuta/sonnet"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WIRE TYPES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// rawParams defers params decoding until the method is known. Works with
// any json.Unmarshaler-aware decoder.
type rawParams []byte

// UnmarshalJSON stores a private copy of the raw params bytes.
func (r *rawParams) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

type envelope struct {
	ID      string    `json:"id"`
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rawParams `json:"params,omitempty"`
	Result  rawParams `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type loginParams struct {
	Login string `json:"login"`
	Pass  string `json:"pass"`
	Agent string `json:"agent"`
}

type submitParams struct {
	EdgeBits uint32   `json:"edge_bits"`
	Height   uint64   `json:"height"`
	JobID    uint64   `json:"job_id"`
	Nonce    uint64   `json:"nonce"`
	Pow      []uint64 `json:"pow"`
}

// Job is the node's unit of work. Read-only for the solve loop; replaced
// wholesale when the node pushes a new template.
type Job struct {
	JobID      uint64 `json:"job_id"`
	Height     uint64 `json:"height"`
	Difficulty uint64 `json:"difficulty"`
	PrePow     string `json:"pre_pow"`
}

// Valid reports whether the job carries a usable header.
func (j *Job) Valid() bool {
	return j != nil && len(j.PrePow) > 0
}

// DeriveKey binds this job + nonce to a graph key: blake2b over the
// decoded pre-pow header and the little-endian nonce.
func (j *Job) DeriveKey(nonce uint64, edgeBits uint32) (*edgegen.Key, error) {
	header := utils.ParseHex(j.PrePow)
	if header == nil {
		return nil, errors.Errorf("stratum: job %d carries malformed pre_pow", j.JobID)
	}
	return edgegen.DeriveKey(header, nonce, edgeBits), nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SESSION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Session is one TCP connection's lifetime. Reader and writer run as
// goroutines registered with control.ShutdownWG; Close joins both.
type Session struct {
	conn    net.Conn
	sendq   chan []byte
	quit    chan struct{}
	job     atomic.Pointer[Job]
	running atomic.Uint32
	closed  atomic.Uint32
	reqID   atomic.Uint64
	wg      sync.WaitGroup
}

// Dial connects to the node and tunes the socket the way a latency-bound
// client wants it: no Nagle, sized kernel buffers.
func Dial(addr string) (*Session, error) {
	raw, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "stratum: dial")
	}

	if tcpConn, ok := raw.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
		tcpConn.SetReadBuffer(constants.SocketBuffer)
		tcpConn.SetWriteBuffer(constants.SocketBuffer)

		if rawFile, ferr := tcpConn.File(); ferr == nil {
			fd := int(rawFile.Fd())
			syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1)
			rawFile.Close()
		}
	}

	return NewSession(raw), nil
}

// NewSession wraps an established connection. Split from Dial so session
// logic is testable over an in-memory pipe.
func NewSession(conn net.Conn) *Session {
	s := &Session{
		conn:  conn,
		sendq: make(chan []byte, constants.SendQueueDepth),
		quit:  make(chan struct{}),
	}
	s.running.Store(1)
	return s
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	s.wg.Add(2)
	control.ShutdownWG.Add(2)
	go s.readerLoop()
	go s.writerLoop()
}

// Running reports whether the session is still usable. Flips to false on
// the first read or write failure and stays there.
//
//go:nosplit
//go:inline
func (s *Session) Running() bool {
	return s.running.Load() == 1
}

// ActiveJob returns the latest job template, or nil before the first one
// arrives. The pointer swap is the only synchronization the solve loop
// needs: an attempt in flight keeps using the job it started with.
func (s *Session) ActiveJob() *Job {
	return s.job.Load()
}

// Close tears the connection down and joins both loops. Idempotent.
func (s *Session) Close() {
	s.running.Store(0)
	if s.closed.Swap(1) == 0 {
		close(s.quit)
	}
	s.conn.Close()
	s.wg.Wait()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// READER PATH
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func (s *Session) readerLoop() {
	defer s.wg.Done()
	defer control.ShutdownWG.Done()

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 64*1024), constants.MaxLineBytes)

	for scanner.Scan() {
		if control.Stopping() {
			break
		}
		s.handleLine(scanner.Bytes())
	}
	if err := scanner.Err(); err != nil && s.Running() {
		debug.DropError("NET", err)
	}
	s.running.Store(0)
}

// handleLine dispatches one JSON-RPC line from the node.
func (s *Session) handleLine(line []byte) {
	var env envelope
	if err := sonnet.Unmarshal(line, &env); err != nil {
		debug.DropError("PROTO", errors.Wrap(err, "undecodable line"))
		return
	}

	if env.Error != nil {
		debug.DropMessage("NODE", env.Method+" error: "+env.Error.Message+
			" (code "+utils.Itoa(env.Error.Code)+")")
		return
	}

	switch env.Method {
	case "job":
		// Push notification: params carry the template.
		s.installJob([]byte(env.Params))
	case "getjobtemplate":
		// Response to our request: template rides in result.
		s.installJob([]byte(env.Result))
	case "login":
		debug.DropMessage("NODE", "login accepted")
	case "submit":
		// env is line-scoped; B2s is safe because the narration is
		// consumed before the next Scan.
		debug.DropMessage("NODE", "share response: "+utils.B2s(env.Result))
	case "keepalive":
		// Node acknowledged; nothing to do.
	default:
		debug.DropMessage("NODE", "ignoring method "+env.Method)
	}
}

func (s *Session) installJob(raw []byte) {
	if len(raw) == 0 {
		return
	}
	job := &Job{}
	if err := sonnet.Unmarshal(raw, job); err != nil {
		debug.DropError("PROTO", errors.Wrap(err, "undecodable job"))
		return
	}
	if !job.Valid() {
		debug.DropMessage("PROTO", "discarding job without pre_pow")
		return
	}
	s.job.Store(job)
	debug.DropMessage("JOB", "height "+utils.Utoa(job.Height)+
		", id "+utils.Utoa(job.JobID)+
		", difficulty "+utils.Utoa(job.Difficulty))
	if control.Solving() {
		// The solve loop picks the new template up at its next attempt
		// boundary; the attempt in flight finishes on the old one.
		debug.DropMessage("JOB", "attempt in flight continues on the previous template")
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WRITER PATH
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func (s *Session) writerLoop() {
	defer s.wg.Done()
	defer control.ShutdownWG.Done()

	for {
		select {
		case <-s.quit:
			return
		case msg := <-s.sendq:
			if _, err := s.conn.Write(msg); err != nil {
				if s.Running() {
					debug.DropError("NET", err)
				}
				s.running.Store(0)
				return
			}
		}
	}
}

// enqueue frames and queues one request. A full queue means the writer is
// wedged; drop and let the session error path reconnect rather than block
// the solve loop.
func (s *Session) enqueue(method string, params any) {
	env := struct {
		ID      string `json:"id"`
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  any    `json:"params,omitempty"`
	}{
		ID:      utils.Utoa(s.reqID.Add(1)),
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	}
	body, err := sonnet.Marshal(env)
	if err != nil {
		debug.DropError("PROTO", errors.Wrap(err, "encode "+method))
		return
	}
	body = append(body, '\n')

	if !s.Running() {
		return
	}
	select {
	case s.sendq <- body:
	default:
		debug.DropMessage("NET", "send queue full, dropping "+method)
	}
}

// SendLogin identifies the worker to the node.
func (s *Session) SendLogin(login, pass string) {
	s.enqueue("login", loginParams{Login: login, Pass: pass, Agent: "cuckatoo-miner/1.0"})
}

// SendKeepAlive keeps the node from reaping an idle connection.
func (s *Session) SendKeepAlive() {
	s.enqueue("keepalive", nil)
}

// SendGetJob asks for a job template when the slot is empty.
func (s *Session) SendGetJob() {
	s.enqueue("getjobtemplate", nil)
}

// SendSubmit forwards one resolved solution for the given job.
func (s *Session) SendSubmit(edgeBits uint32, job *Job, nonce uint64, pow []uint64) {
	s.enqueue("submit", submitParams{
		EdgeBits: edgeBits,
		Height:   job.Height,
		JobID:    job.JobID,
		Nonce:    nonce,
		Pow:      pow,
	})
}
