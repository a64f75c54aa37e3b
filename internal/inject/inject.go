// Package inject implements the Injection Manager (§4.D): the single
// channel through which text is delivered into a running agent's PTY and
// through which coordination events are journaled.
//
// Grounded on agentium's typed-error conventions (internal/controller) and
// on stringwork's internal/app/notifier.go for the shape of a validated,
// logged messaging layer sitting in front of a shared resource.
package inject

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/rdfitted/hive-manager/internal/ptymgr"
	"github.com/rdfitted/hive-manager/internal/security"
	"github.com/rdfitted/hive-manager/internal/sessionid"
	"github.com/rdfitted/hive-manager/internal/store"
)

// logSanitizer redacts secret-shaped substrings (API keys, bearer tokens,
// private key blocks) an agent might echo into a coordination message,
// before the control-character escaping/truncation pass below runs.
var logSanitizer = security.NewLogSanitizer()

// Kind categorizes a coordination message.
type Kind string

const (
	KindTask       Kind = "task"
	KindProgress   Kind = "progress"
	KindCompletion Kind = "completion"
	KindError      Kind = "error"
	KindSystem     Kind = "system"
)

// ErrorClass classifies failures per §7's taxonomy, narrowed to this
// component's three outcomes.
type ErrorClass int

const (
	ClassNotAuthorized ErrorClass = iota
	ClassPtyError
	ClassStorageError
)

// Error wraps a failure with its classification.
type Error struct {
	Class  ErrorClass
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func notAuthorized(reason string) error {
	return &Error{Class: ClassNotAuthorized, Reason: reason}
}

func ptyError(reason string, err error) error {
	return &Error{Class: ClassPtyError, Reason: reason, Err: err}
}

func storageError(reason string, err error) error {
	return &Error{Class: ClassStorageError, Reason: reason, Err: err}
}

// maxLoggedRunes is the truncation point for sanitized log content (§4.D
// write discipline step 3).
const maxLoggedRunes = 500

// EventSink receives UI-facing coordination-message notifications. The
// zero Manager has a nil sink, which simply drops events.
type EventSink interface {
	EmitCoordinationMessage(sessionID, from, to, content string, kind Kind)
}

// Manager is the Injection Manager.
type Manager struct {
	pty    *ptymgr.Manager
	store  *store.Store
	sink   EventSink
	logger *log.Logger
}

// New creates a Manager delivering into pty and journaling through store.
func New(pty *ptymgr.Manager, st *store.Store, sink EventSink, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{pty: pty, store: st, sink: sink, logger: logger}
}

// --- write discipline ---------------------------------------------------

// prepareForPTY strips trailing CR/LF from text and appends a canonical
// CR+LF terminator, per §4.D write discipline steps 1-2.
func prepareForPTY(text string) []byte {
	trimmed := strings.TrimRight(text, "\r\n")
	return []byte(trimmed + "\r\n")
}

var controlEscapes = map[rune]string{
	'\x00': `\x00`, '\x01': `\x01`, '\x02': `\x02`, '\x03': `\x03`,
	'\x04': `\x04`, '\x05': `\x05`, '\x06': `\x06`, '\x07': `\x07`,
	'\x08': `\x08`, '\x0b': `\x0b`, '\x0c': `\x0c`, '\x0e': `\x0e`,
	'\x0f': `\x0f`, '\x1b': `\x1b`,
}

// sanitizeForLog escapes control characters (other than plain newline/tab,
// which pass through readably) and truncates at 500 code points, per §4.D
// write discipline step 3 and §8's boundary behavior.
func sanitizeForLog(content string) string {
	var b strings.Builder
	count := 0
	for _, r := range content {
		if count >= maxLoggedRunes {
			b.WriteString("…[truncated]")
			return b.String()
		}
		if esc, isControl := controlEscapes[r]; isControl {
			b.WriteString(esc)
		} else {
			b.WriteRune(r)
		}
		count++
	}
	return b.String()
}

func (m *Manager) journal(sessionID, from, to, content string, kind Kind) error {
	sanitized := sanitizeForLog(logSanitizer.Sanitize(content))
	if err := m.store.Append(sessionID, from, to, sanitized); err != nil {
		return storageError("failed to append coordination log", err)
	}
	if m.sink != nil {
		m.sink.EmitCoordinationMessage(sessionID, from, to, sanitized, kind)
	}
	return nil
}

func (m *Manager) writePTY(id, text string) error {
	if err := m.pty.Write(id, prepareForPTY(text)); err != nil {
		return ptyError(fmt.Sprintf("failed to write to %s", id), err)
	}
	return nil
}

// --- authorization --------------------------------------------------

// validateStrict enforces §4.D's three-step authorization model with exact
// (not loose) suffix matching, used by queen_inject and queen_switch_branch.
func (m *Manager) validateStrict(sessionID, claimedID string, expectQueen bool) error {
	if !sessionid.HasSessionPrefix(claimedID, sessionID) {
		return notAuthorized(fmt.Sprintf("id %q does not belong to session %q", claimedID, sessionID))
	}
	if expectQueen && !sessionid.IsQueenOf(claimedID, sessionID) {
		return notAuthorized(fmt.Sprintf("id %q does not carry the queen suffix", claimedID))
	}
	if !m.pty.Exists(claimedID) {
		return notAuthorized(fmt.Sprintf("id %q is not a live agent", claimedID))
	}
	return nil
}

// validateWorkerTargetStrict is used by queen_inject for the *target*: the
// target id must carry an exact `-worker-<N>` suffix (§8: "queen_inject
// with a target_worker_id whose suffix is not -worker-<N> fails with
// NotAuthorized and writes nothing" — §9 open question 1 never loosens
// this for queen_inject).
func (m *Manager) validateWorkerTargetStrict(sessionID, targetID string) error {
	if _, ok := sessionid.IsWorkerSuffixExact(targetID, sessionID); !ok {
		return notAuthorized(fmt.Sprintf("target %q is not a worker of session %q", targetID, sessionID))
	}
	if !m.pty.Exists(targetID) {
		return notAuthorized(fmt.Sprintf("target %q is not a live agent", targetID))
	}
	return nil
}

// validateSelfReport validates a worker/planner reporting its own
// progress. Per §9 open question 1, hive-manager decides to accept the
// loose "contains the role suffix" match here (not just a trailing
// match), to accommodate planner-owned workers such as
// "session-planner-1-worker-2".
func (m *Manager) validateSelfReport(sessionID, claimedID string, role sessionid.Role) error {
	if !sessionid.ContainsRoleSuffix(claimedID, sessionID, role) {
		return notAuthorized(fmt.Sprintf("id %q does not carry a %v suffix for session %q", claimedID, role, sessionID))
	}
	if !m.pty.Exists(claimedID) {
		return notAuthorized(fmt.Sprintf("id %q is not a live agent", claimedID))
	}
	return nil
}

// --- operations -----------------------------------------------------

// QueenInject validates queenID as the queen of session, appends a Task
// message, and writes message into targetWorkerID's PTY.
func (m *Manager) QueenInject(session, queenID, targetWorkerID, message string) error {
	if err := m.validateStrict(session, queenID, true); err != nil {
		return err
	}
	if err := m.validateWorkerTargetStrict(session, targetWorkerID); err != nil {
		return err
	}

	from := sessionid.DisplayName(queenID)
	to := sessionid.DisplayName(targetWorkerID)
	if err := m.journal(session, from, to, message, KindTask); err != nil {
		return err
	}
	return m.writePTY(targetWorkerID, message)
}

// QueenSwitchBranch fans out a branch-change command to every worker id,
// prefixed with an ETX (\x03) to interrupt any running foreground command
// first, per §4.D and §9 open question 2. This is a Hive-only operation:
// Fusion and Swarm code paths never call it.
func (m *Manager) QueenSwitchBranch(session, queenID string, workerIDs []string, branch string) error {
	if err := m.validateStrict(session, queenID, true); err != nil {
		return err
	}

	from := sessionid.DisplayName(queenID)
	command := "\x03git switch " + branch

	var firstErr error
	for _, workerID := range workerIDs {
		to := sessionid.DisplayName(workerID)
		status := "initiated"

		if err := m.validateWorkerTargetStrict(session, workerID); err != nil {
			status = "failed"
			_ = m.journal(session, from, to, fmt.Sprintf("branch switch to %s: %s (%v)", branch, status, err), KindSystem)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := m.writePTY(workerID, command); err != nil {
			status = "failed"
			_ = m.journal(session, from, to, fmt.Sprintf("branch switch to %s: %s (%v)", branch, status, err), KindSystem)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		_ = m.journal(session, from, to, fmt.Sprintf("branch switch to %s: %s", branch, status), KindSystem)
	}
	return firstErr
}

// OperatorInject bypasses role validation (the operator is trusted) and
// logs a System message tagged [OPERATOR].
func (m *Manager) OperatorInject(session, targetID, message string) error {
	if !m.pty.Exists(targetID) {
		return notAuthorized(fmt.Sprintf("target %q is not a live agent", targetID))
	}

	to := sessionid.DisplayName(targetID)
	if err := m.journal(session, "[OPERATOR]", to, message, KindSystem); err != nil {
		return err
	}
	return m.writePTY(targetID, message)
}

// WorkerInject validates the sender as a worker of session and appends a
// Progress message. Workers log; they do not write to peer PTYs.
func (m *Manager) WorkerInject(session, workerID, message string) error {
	if err := m.validateSelfReport(session, workerID, sessionid.RoleWorker); err != nil {
		return err
	}
	from := sessionid.DisplayName(workerID)
	return m.journal(session, from, "[COORDINATOR]", message, KindProgress)
}

// PlannerInject validates the sender as a planner of session and appends a
// Progress message. Planners log; they do not write to peer PTYs.
func (m *Manager) PlannerInject(session, plannerID, message string) error {
	if err := m.validateSelfReport(session, plannerID, sessionid.RolePlanner); err != nil {
		return err
	}
	from := sessionid.DisplayName(plannerID)
	return m.journal(session, from, "[COORDINATOR]", message, KindProgress)
}

// NotifyQueenWorkerAdded journals a System message about a newly created
// worker. It intentionally does not write to the queen's PTY — the queen
// discovers new workers via the HTTP API call that created them.
func (m *Manager) NotifyQueenWorkerAdded(session, queenID string, workerIndex int) error {
	to := sessionid.DisplayName(queenID)
	msg := "worker-" + strconv.Itoa(workerIndex) + " added to session"
	return m.journal(session, "[SYSTEM]", to, msg, KindSystem)
}

// LogSystemMessage writes a raw journal entry with no PTY write.
func (m *Manager) LogSystemMessage(session, target, message string) error {
	to := sessionid.DisplayName(target)
	return m.journal(session, "[SYSTEM]", to, message, KindSystem)
}

// GetCoordinationLog reads back the session's coordination log through
// the Persistent Store.
func (m *Manager) GetCoordinationLog(session string, limit int) ([]store.CoordinationRecord, error) {
	records, err := m.store.Read(session, limit)
	if err != nil {
		return nil, storageError("failed to read coordination log", err)
	}
	return records, nil
}
