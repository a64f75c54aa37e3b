package session

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/rdfitted/hive-manager/internal/config"
	"github.com/rdfitted/hive-manager/internal/events"
	"github.com/rdfitted/hive-manager/internal/inject"
	"github.com/rdfitted/hive-manager/internal/prompt"
	"github.com/rdfitted/hive-manager/internal/ptymgr"
	"github.com/rdfitted/hive-manager/internal/routing"
	"github.com/rdfitted/hive-manager/internal/sessionid"
	"github.com/rdfitted/hive-manager/internal/store"
	"github.com/rdfitted/hive-manager/internal/taskwatch"
)

// Publisher is the subset of events.Bus the controller depends on. Kept as
// a local interface, the way inject.Manager depends on an EventSink rather
// than a concrete bus, so this package never has to import events for more
// than the Event type itself.
type Publisher interface {
	Publish(ev events.Event)
}

// Controller is the Session Controller of §4.E: the state machine that
// creates sessions, spawns and kills agents in the right order, and
// persists session state through the store, PTY manager, injection
// manager, and task watchers.
type Controller struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
	watchers map[string]*taskwatch.Watcher

	store  *store.Store
	pty    *ptymgr.Manager
	inject *inject.Manager
	cfg    *config.Config
	bus    Publisher
	logger *log.Logger

	router   *routing.Router
	selector WorkerSelector

	completions chan taskwatch.CompletedEvent

	hbMu       sync.Mutex
	heartbeats map[string]heartbeatRecord
	stalled    map[string]bool
}

type heartbeatRecord struct {
	sessionID string
	status    string
	summary   string
	seenAt    time.Time
}

// New builds a Controller. It does not start the stall monitor; call
// StartStallMonitor separately once the controller is wired into a daemon
// so tests can construct a Controller without a background goroutine.
func New(st *store.Store, pty *ptymgr.Manager, inj *inject.Manager, cfg *config.Config, bus Publisher, logger *log.Logger) *Controller {
	c := &Controller{
		sessions:    make(map[string]*liveSession),
		watchers:    make(map[string]*taskwatch.Watcher),
		store:       st,
		pty:         pty,
		inject:      inj,
		cfg:         cfg,
		bus:         bus,
		logger:      logger,
		router:      routing.NewRouter(&cfg.RoleRouting),
		selector:    SequentialSelector{},
		completions: make(chan taskwatch.CompletedEvent, 64),
		heartbeats:  make(map[string]heartbeatRecord),
		stalled:     make(map[string]bool),
	}
	go c.consumeCompletions()
	return c
}

// consumeCompletions drains taskwatch completion events from every
// session's watcher and runs the sequential worker progression algorithm,
// serialized through the controller's own methods rather than per-watcher
// goroutines touching session state directly.
func (c *Controller) consumeCompletions() {
	for ev := range c.completions {
		if err := c.handleTaskCompleted(ev.SessionID, ev.WorkerIndex); err != nil {
			c.logger.Printf("session %s: task-completed(%d): %v", ev.SessionID, ev.WorkerIndex, err)
		}
	}
}

func (c *Controller) publish(ev events.Event) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(ev)
}

func (c *Controller) publishSessionUpdate(s *liveSession) {
	snapshot := s.Snapshot
	c.publish(events.NewSessionUpdate(snapshot.ID, snapshot))
}

// get returns the live session for id, holding no lock on return — callers
// needing to mutate must re-acquire mu.Lock and look up again, matching
// the teacher's short-critical-section style in internal/controller.
func (c *Controller) get(id string) (*liveSession, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, notFoundErr(fmt.Sprintf("session %s not found", id))
	}
	return s, nil
}

// Get returns a snapshot of session id's current state.
func (c *Controller) Get(id string) (Snapshot, error) {
	s, err := c.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return s.Snapshot, nil
}

// List returns a snapshot of every session currently held in memory,
// ordered the way store.List orders on-disk sessions: most recent first.
func (c *Controller) List() []Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Snapshot, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s.Snapshot)
	}
	return out
}

// saveLocked persists s to disk and fires a session-update event. Callers
// must hold c.mu for writing.
func (c *Controller) saveLocked(s *liveSession) error {
	if err := c.store.SaveSession(s.ID, s.Snapshot); err != nil {
		return storageErr(fmt.Sprintf("saving session %s", s.ID), err)
	}
	c.publishSessionUpdate(s)
	return nil
}

// promptContext builds the substitution variables common to every role's
// prompt for session s.
func (c *Controller) promptContext(s *liveSession, workerIndex, plannerIndex int, variantName string) prompt.Context {
	tasksDir := c.store.TasksDir(s.ID)
	ctx := prompt.Context{
		SessionID:           s.ID,
		ProjectPath:         s.ProjectPath,
		CoordinationLogPath: filepath.Join(c.store.SessionDir(s.ID), "coordination", "coordination.log"),
		TasksDir:            tasksDir,
		PlanPath:            filepath.Join(c.store.SessionDir(s.ID), "state", "plan.md"),
		VariantName:         variantName,
	}
	if workerIndex > 0 {
		ctx.TaskFile = filepath.Join(tasksDir, store.TaskFileName(workerIndex))
		ctx.WorkerIndex = fmt.Sprintf("%d", workerIndex)
	}
	_ = plannerIndex // reserved for a planner-scoped task file naming scheme; planners have none today
	return ctx
}

// roleName maps a sessionid.Role to the string keys internal/config and
// internal/prompt's role templates are indexed by.
func roleName(role sessionid.Role) string {
	switch role {
	case sessionid.RoleQueen:
		return "queen"
	case sessionid.RoleMasterPlanner:
		return "master_planner"
	case sessionid.RolePlanner:
		return "planner"
	case sessionid.RoleWorker, sessionid.RolePlannerWorker:
		return "worker"
	case sessionid.RoleFusionVariant:
		return "variant"
	case sessionid.RoleJudge:
		return "judge"
	default:
		return "worker"
	}
}

// buildArgs derives the full argument list for a CLI invocation from its
// registry entry, per §4.E's "spawn command line is derived from the CLI
// identity".
func buildArgs(entry config.CLIEntry, model, promptPath string) []string {
	var args []string
	if entry.AutoApproveFlag != "" {
		args = append(args, entry.AutoApproveFlag)
	}
	if entry.ModelFlag != "" {
		m := model
		if m == "" {
			m = entry.DefaultModel
		}
		if m != "" {
			args = append(args, entry.ModelFlag, m)
		}
	}
	switch entry.PromptArgStyle {
	case config.PromptArgFlagP:
		args = append(args, "-p", promptPath)
	case config.PromptArgFlagI:
		args = append(args, "-i", promptPath)
	default:
		args = append(args, promptPath)
	}
	return args
}

// resolveCLI picks the effective CLI+model for a role: an explicit override
// from the launch config takes precedence, then the routing table's
// per-role override (if configured), then internal/config's per-role
// default.
func (c *Controller) resolveCLI(role sessionid.Role, overrideCLI, overrideModel string) (string, config.CLIEntry, string, error) {
	name := overrideCLI
	model := overrideModel
	if name == "" {
		if routed := c.router.ForRole(roleName(role)); routed.CLI != "" {
			name = routed.CLI
			if model == "" {
				model = routed.Model
			}
		}
	}
	if name == "" {
		rd := c.cfg.RoleDefault(roleName(role))
		name = rd.CLI
		if model == "" {
			model = rd.Model
		}
	}
	entry, ok := c.cfg.LookupCLI(name)
	if !ok {
		return "", config.CLIEntry{}, "", invalidErr(fmt.Sprintf("cli %q is not in the registry", name))
	}
	return name, entry, model, nil
}

// spawnAgent writes the agent's prompt document, starts its PTY, and
// appends its agent record to s. It does not acquire c.mu; callers hold
// the lock already.
func (c *Controller) spawnAgent(s *liveSession, agentID string, role sessionid.Role, parentID string, workerIndex, plannerIndex int, variantName, overrideCLI, overrideModel string) (Agent, error) {
	cliName, entry, model, err := c.resolveCLI(role, overrideCLI, overrideModel)
	if err != nil {
		return Agent{}, err
	}

	ctx := c.promptContext(s, workerIndex, plannerIndex, variantName)
	promptPath, err := prompt.WriteFile(c.store.SessionDir(s.ID), agentID, role, prompt.Variant(entry.ToleranceProfile), ctx)
	if err != nil {
		return Agent{}, storageErr(fmt.Sprintf("writing prompt for %s", agentID), err)
	}

	args := buildArgs(entry, model, promptPath)
	rd := c.cfg.RoleDefault(roleName(role))
	cols, rows := rd.Cols, rd.Rows
	if cols == 0 {
		cols = 120
	}
	if rows == 0 {
		rows = 40
	}

	if err := c.pty.Create(agentID, roleName(role), entry.Command, args, s.ProjectPath, cols, rows); err != nil {
		return Agent{}, ptyErr(fmt.Sprintf("spawning %s", agentID), err)
	}

	agent := Agent{
		ID:           agentID,
		Role:         role,
		Status:       AgentStarting,
		CLI:          cliName,
		Model:        model,
		ParentID:     parentID,
		WorkerIndex:  workerIndex,
		PlannerIndex: plannerIndex,
		VariantName:  variantName,
		CreatedOrder: s.nextCreatedOrder(),
	}
	s.Agents = append(s.Agents, agent)
	return agent, nil
}

// register adds a newly created session to the in-memory table.
func (c *Controller) register(s *liveSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = s
}

// startWatcher starts a Task File Watcher for session id and records it so
// Stop can tear it down later. Failing to start the watcher is logged, not
// fatal, per §4.C's lifecycle contract.
func (c *Controller) startWatcher(id string) {
	w := taskwatch.New(id, c.store.TasksDir(id), c.completions, c.logger)
	c.mu.Lock()
	c.watchers[id] = w
	c.mu.Unlock()
	if err := w.Start(context.Background()); err != nil {
		c.logger.Printf("session %s: starting task watcher: %v", id, err)
	}
}

// fail transitions s to Failed(reason), persists and publishes it, and
// returns the snapshot alongside the original error so launch operations
// can report both to their caller in one step.
func (c *Controller) fail(s *liveSession, cause error) (Snapshot, error) {
	s.State = StateFailed
	s.FailureReason = cause.Error()
	if err := c.store.SaveSession(s.ID, s.Snapshot); err != nil {
		c.logger.Printf("session %s: saving failed state: %v", s.ID, err)
	}
	c.publishSessionUpdate(s)
	return s.Snapshot, cause
}

// unwind kills every agent already spawned for s, in the order they were
// created, and is called when a launch operation fails partway through —
// §4.E's "every PTY that was created before the failure is killed before
// the operation returns".
func (c *Controller) unwind(s *liveSession) {
	for _, a := range s.Agents {
		if err := c.pty.Kill(a.ID); err != nil {
			c.logger.Printf("session %s: unwind: killing %s: %v", s.ID, a.ID, err)
		}
	}
	s.Agents = nil
}
