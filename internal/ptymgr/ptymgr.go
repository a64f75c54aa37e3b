// Package ptymgr owns the table of live agent PTYs: the child process, the
// master-side reader/writer, the declared role, and liveness status. It is
// §4.A of the design — the PTY Manager.
//
// Grounded on the trybotster PTY agent pattern (pty.Start + dedicated
// reader goroutine + RingBuffer-free direct streaming) generalized from a
// single-agent struct into a process-wide table, and on agentium's
// exec.CommandContext / structured-error conventions.
package ptymgr

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// Status is the liveness state of a managed PTY record.
type Status string

const (
	StatusStarting  Status = "starting"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// ErrNotFound is returned when an operation targets an id with no live record.
var ErrNotFound = errors.New("ptymgr: agent not found")

// OutputEvent is emitted for every chunk of bytes read from a PTY.
type OutputEvent struct {
	ID    string
	Bytes []byte
}

// StatusEvent is emitted whenever a record's liveness status changes.
type StatusEvent struct {
	ID      string
	Status  Status
	Message string // populated for StatusError
}

// Sink receives PTY output and status events for upstream consumption
// (the UI event stream, §6).
type Sink interface {
	EmitOutput(OutputEvent)
	EmitStatus(StatusEvent)
}

type record struct {
	id     string
	role   string
	cmd    *exec.Cmd
	master *os.File

	writeMu sync.Mutex // serializes writes to this record, per §5 ordering guarantee
	statusMu sync.Mutex
	status  Status
	errMsg  string
}

// Manager is the process-wide PTY table. The zero value is not usable; use New.
type Manager struct {
	mu      sync.RWMutex // multi-reader/single-writer over the table itself
	records map[string]*record
	sink    Sink
	logger  *log.Logger
}

// New creates a Manager that reports output and status changes to sink.
func New(sink Sink, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		records: make(map[string]*record),
		sink:    sink,
		logger:  logger,
	}
}

// Create opens a PTY pair, spawns command/args in cwd (or the controller's
// own working directory if cwd is empty) with the given initial window
// size, and starts a dedicated reader goroutine. The record is inserted
// into the table before the reader goroutine starts, so there is no
// lost-race window where output arrives with nobody listening.
func (m *Manager) Create(id, role, command string, args []string, cwd string, cols, rows int) error {
	m.mu.Lock()
	if _, exists := m.records[id]; exists {
		m.mu.Unlock()
		return fmt.Errorf("ptymgr: id %q already has a live record", id)
	}

	cmd := exec.Command(command, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	cmd.Env = os.Environ()

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("ptymgr: failed to spawn %q: %w", command, err)
	}

	rec := &record{
		id:     id,
		role:   role,
		cmd:    cmd,
		master: master,
		status: StatusStarting,
	}
	m.records[id] = rec
	m.mu.Unlock()

	go m.readLoop(rec)

	return nil
}

func (m *Manager) readLoop(rec *record) {
	rec.statusMu.Lock()
	rec.status = StatusRunning
	rec.statusMu.Unlock()
	m.emitStatus(rec.id, StatusRunning, "")

	buf := make([]byte, 4096)
	for {
		n, err := rec.master.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			m.emitOutput(rec.id, chunk)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				m.logger.Printf("ptymgr: read error for %s: %v", rec.id, err)
			}
			break
		}
	}

	rec.statusMu.Lock()
	rec.status = StatusCompleted
	rec.statusMu.Unlock()
	m.emitStatus(rec.id, StatusCompleted, "")
}

func (m *Manager) emitOutput(id string, b []byte) {
	if m.sink != nil {
		m.sink.EmitOutput(OutputEvent{ID: id, Bytes: b})
	}
}

func (m *Manager) emitStatus(id string, s Status, msg string) {
	if m.sink != nil {
		m.sink.EmitStatus(StatusEvent{ID: id, Status: s, Message: msg})
	}
}

func (m *Manager) lookup(id string) (*record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Write sends bytes to the PTY identified by id. Writes to a single record
// are serialized by a per-record mutex so concurrent callers never
// interleave bytes of different messages.
func (m *Manager) Write(id string, b []byte) error {
	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	rec.writeMu.Lock()
	defer rec.writeMu.Unlock()

	if _, err := rec.master.Write(b); err != nil {
		return fmt.Errorf("ptymgr: write to %s failed: %w", id, err)
	}
	return nil
}

// Resize adjusts the PTY window for id.
func (m *Manager) Resize(id string, cols, rows int) error {
	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	return pty.Setsize(rec.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Kill sends the OS termination signal to the agent's child process.
// Idempotent: killing an already-dead or absent process returns nil.
func (m *Manager) Kill(id string) error {
	rec, err := m.lookup(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if rec.cmd.Process == nil {
		return nil
	}
	if err := rec.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("ptymgr: kill %s failed: %w", id, err)
	}
	return nil
}

// Remove drops the record from the table (called once the reader goroutine
// has observed EOF and the owning controller no longer needs it).
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
}

// Status returns the current liveness status for id.
func (m *Manager) Status(id string) (Status, error) {
	rec, err := m.lookup(id)
	if err != nil {
		return "", err
	}
	rec.statusMu.Lock()
	defer rec.statusMu.Unlock()
	return rec.status, nil
}

// List returns a snapshot of all live ids and their roles.
func (m *Manager) List() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.records))
	for id, rec := range m.records {
		out[id] = rec.role
	}
	return out
}

// Exists reports whether id has a live record in the table (§4.D rule 3).
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok
}
