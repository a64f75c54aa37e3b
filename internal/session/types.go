// Package session implements the Session Controller (§4.E): the state
// machine that creates sessions, spawns and kills agents in the correct
// order, and persists session state through the other four components.
//
// Grounded on stringwork's internal/app.CollabService for the shape of a
// mutex-guarded in-memory state table fronting a persistence layer, and on
// agentium's internal/controller for typed-error/state-transition style.
package session

import (
	"fmt"
	"time"

	"github.com/rdfitted/hive-manager/internal/sessionid"
)

// Shape names which of the four launch operations created a session.
type Shape string

const (
	ShapeHive   Shape = "hive"
	ShapeSwarm  Shape = "swarm"
	ShapeFusion Shape = "fusion"
	ShapeSolo   Shape = "solo"
)

// State is a session's position in the §4.E state machine.
type State string

const (
	StatePlanning         State = "Planning"
	StatePlanReady        State = "PlanReady"
	StateStarting         State = "Starting"
	StateSpawningWorker   State = "SpawningWorker"
	StateWaitingForWorker State = "WaitingForWorker"
	StateRunning          State = "Running"
	StatePaused           State = "Paused"
	StateCompleted        State = "Completed"
	StateFailed           State = "Failed"
)

// AgentStatus is an agent record's lifecycle position, per §3.
type AgentStatus string

const (
	AgentStarting        AgentStatus = "Starting"
	AgentRunning         AgentStatus = "Running"
	AgentWaitingForInput AgentStatus = "WaitingForInput"
	AgentCompleted       AgentStatus = "Completed"
	AgentError           AgentStatus = "Error"
)

// Agent is one agent record within a session, per §3's "Agent record".
type Agent struct {
	ID           string            `json:"id"`
	Role         sessionid.Role    `json:"role"`
	Status       AgentStatus       `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CLI          string            `json:"cli"`
	Model        string            `json:"model,omitempty"`
	ParentID     string            `json:"parent_id,omitempty"`
	WorkerIndex  int               `json:"worker_index,omitempty"`
	PlannerIndex int               `json:"planner_index,omitempty"`
	VariantName  string            `json:"variant_name,omitempty"`
	Label        string            `json:"label,omitempty"`
	CreatedOrder int               `json:"created_order"`
	CreatedAt    time.Time         `json:"created_at"`
}

// LaunchConfig captures every parameter a launch operation needs, and is
// the payload snapshotted to pending-config.json when a session enters
// the Planning state, per §3's "optional pending-config payload".
type LaunchConfig struct {
	Shape           Shape    `json:"shape"`
	ProjectPath     string   `json:"project_path"`
	WorkerCount     int      `json:"worker_count,omitempty"`
	PlannerCount    int      `json:"planner_count,omitempty"`
	WorkersPerPlan  int      `json:"workers_per_planner,omitempty"`
	VariantNames    []string `json:"variant_names,omitempty"`
	TaskDescription string   `json:"task_description,omitempty"`
	CLI             string   `json:"cli,omitempty"`
	Model           string   `json:"model,omitempty"`
	WithPlanning    bool     `json:"with_planning,omitempty"`
}

// Snapshot is the JSON shape persisted to session.json (§4.B "save").
type Snapshot struct {
	ID                    string        `json:"id"`
	Shape                 Shape         `json:"shape"`
	ProjectPath           string        `json:"project_path"`
	CreatedAt             time.Time     `json:"created_at"`
	State                 State         `json:"state"`
	WaitingForWorkerIndex int           `json:"waiting_for_worker_index,omitempty"`
	FailureReason         string        `json:"failure_reason,omitempty"`
	Agents                []Agent       `json:"agents"`
	PendingConfig         *LaunchConfig `json:"pending_config,omitempty"`
}

// session is the controller's in-memory working copy of a Snapshot, plus
// the suspended launch config kept around during sequential worker
// progression (distinct from PendingConfig, which is only populated
// during the planning phase).
type liveSession struct {
	Snapshot
	suspended *LaunchConfig // the team-spawn config driving sequential progression, nil once Running
}

func (s *liveSession) agentByID(id string) (*Agent, int) {
	for i := range s.Agents {
		if s.Agents[i].ID == id {
			return &s.Agents[i], i
		}
	}
	return nil, -1
}

// agentByWorkerIndex finds the agent occupying worker slot n, regardless
// of its role — Hive uses RoleWorker, Swarm uses RolePlannerWorker, and
// Fusion uses RoleFusionVariant, all keyed by the same task-file index.
func (s *liveSession) agentByWorkerIndex(n int) (*Agent, int) {
	for i := range s.Agents {
		switch s.Agents[i].Role {
		case sessionid.RoleWorker, sessionid.RolePlannerWorker, sessionid.RoleFusionVariant:
			if s.Agents[i].WorkerIndex == n {
				return &s.Agents[i], i
			}
		}
	}
	return nil, -1
}

func (s *liveSession) nextCreatedOrder() int {
	return len(s.Agents)
}

// ErrorClass classifies a session-package failure per §7's taxonomy.
type ErrorClass int

const (
	ClassNotFound ErrorClass = iota
	ClassInvalid
	ClassNotAuthorized
	ClassPtyError
	ClassStorageError
	ClassTerminationError
)

// Error wraps a failure with its §7 classification.
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

func notFoundErr(reason string) error { return &Error{Class: ClassNotFound, Reason: reason} }
func invalidErr(reason string) error  { return &Error{Class: ClassInvalid, Reason: reason} }
func ptyErr(reason string, err error) error {
	return &Error{Class: ClassPtyError, Reason: reason, Err: err}
}
func storageErr(reason string, err error) error {
	return &Error{Class: ClassStorageError, Reason: reason, Err: err}
}
func notAuthorizedErr(reason string) error { return &Error{Class: ClassNotAuthorized, Reason: reason} }
func terminationErr(reason string, err error) error {
	return &Error{Class: ClassTerminationError, Reason: reason, Err: err}
}
