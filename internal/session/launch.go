package session

import (
	"fmt"
	"time"

	"github.com/rdfitted/hive-manager/internal/sessionid"
	"github.com/rdfitted/hive-manager/internal/store"
)

func newLiveSession(id string, cfg LaunchConfig) *liveSession {
	return &liveSession{
		Snapshot: Snapshot{
			ID:          id,
			Shape:       cfg.Shape,
			ProjectPath: cfg.ProjectPath,
			CreatedAt:   time.Now(),
			State:       StateStarting,
		},
	}
}

func (c *Controller) createSessionDir(id string) error {
	if err := c.store.CreateSessionDir(id); err != nil {
		return storageErr(fmt.Sprintf("creating session directory for %s", id), err)
	}
	return nil
}

// LaunchHive implements launch_hive(config): queen + sequential workers,
// optionally preceded by a planning phase.
func (c *Controller) LaunchHive(cfg LaunchConfig) (Snapshot, error) {
	cfg.Shape = ShapeHive
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	return c.launch(cfg, c.spawnHiveTeam)
}

// LaunchSwarm implements launch_swarm(config): queen, then for each planner
// its own layer of workers.
func (c *Controller) LaunchSwarm(cfg LaunchConfig) (Snapshot, error) {
	cfg.Shape = ShapeSwarm
	if cfg.PlannerCount <= 0 {
		cfg.PlannerCount = 1
	}
	if cfg.WorkersPerPlan <= 0 {
		cfg.WorkersPerPlan = 1
	}
	return c.launch(cfg, c.spawnSwarmTeam)
}

// LaunchFusion implements launch_fusion(config): N independent variants of
// the same task, spawned as peer agents, with no planning phase (fusion
// has no queen or planner to review a plan against).
func (c *Controller) LaunchFusion(cfg LaunchConfig) (Snapshot, error) {
	cfg.Shape = ShapeFusion
	cfg.WithPlanning = false
	if len(cfg.VariantNames) == 0 {
		cfg.VariantNames = []string{"a", "b"}
	}
	return c.launch(cfg, c.spawnFusionTeam)
}

// LaunchSolo implements launch_solo(config): a single agent, no planning.
func (c *Controller) LaunchSolo(cfg LaunchConfig) (Snapshot, error) {
	cfg.Shape = ShapeSolo
	cfg.WithPlanning = false
	return c.launch(cfg, c.spawnSoloAgent)
}

// teamSpawner performs the shape-specific "spawn the main team" step once
// planning (if any) is done. It must append every spawned Agent to s and
// return the session's post-spawn state.
type teamSpawner func(s *liveSession, cfg LaunchConfig) (State, error)

// launch creates the session directory and in-memory record, starts its
// task watcher, and then either begins planning or spawns the team
// directly, per §4.E's launch operations.
func (c *Controller) launch(cfg LaunchConfig, spawn teamSpawner) (Snapshot, error) {
	id := sessionid.NewSessionID()
	if err := c.createSessionDir(id); err != nil {
		return Snapshot{}, err
	}

	s := newLiveSession(id, cfg)
	c.register(s)
	c.startWatcher(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg.WithPlanning {
		return c.beginPlanningLocked(s, cfg)
	}
	return c.spawnTeamLocked(s, cfg, spawn)
}

// beginPlanningLocked spawns only the Master Planner and parks the rest of
// the launch config on disk, per §4.E's "with_planning" branch. Caller
// holds c.mu.
func (c *Controller) beginPlanningLocked(s *liveSession, cfg LaunchConfig) (Snapshot, error) {
	plannerID := sessionid.MasterPlannerID(s.ID)
	if _, err := c.spawnAgent(s, plannerID, sessionid.RoleMasterPlanner, "", 0, 0, "", cfg.CLI, cfg.Model); err != nil {
		c.unwind(s)
		return c.fail(s, err)
	}

	pending := cfg
	s.PendingConfig = &pending
	s.State = StatePlanning
	if err := c.store.SavePendingConfig(s.ID, &pending); err != nil {
		c.unwind(s)
		return c.fail(s, storageErr("saving pending config", err))
	}
	if err := c.saveLocked(s); err != nil {
		c.unwind(s)
		return Snapshot{}, err
	}
	return s.Snapshot, nil
}

// spawnTeamLocked runs spawn and transitions s into whatever state it
// returns, unwinding on failure. Caller holds c.mu.
func (c *Controller) spawnTeamLocked(s *liveSession, cfg LaunchConfig, spawn teamSpawner) (Snapshot, error) {
	state, err := spawn(s, cfg)
	if err != nil {
		c.unwind(s)
		return c.fail(s, err)
	}
	s.State = state
	if err := c.saveLocked(s); err != nil {
		c.unwind(s)
		return Snapshot{}, err
	}
	return s.Snapshot, nil
}

// spawnHiveTeam implements the Hive team spawn order: queen first, then
// worker 1 only (task file ACTIVE); remaining workers are deferred with
// task files at STANDBY, per §4.E's "Team spawn order" and invariant 3.
func (c *Controller) spawnHiveTeam(s *liveSession, cfg LaunchConfig) (State, error) {
	queenID := sessionid.QueenID(s.ID)
	if _, err := c.spawnAgent(s, queenID, sessionid.RoleQueen, "", 0, 0, "", cfg.CLI, cfg.Model); err != nil {
		return "", err
	}

	for n := 1; n <= cfg.WorkerCount; n++ {
		status := store.TaskStandby
		if n == 1 {
			status = store.TaskActive
		}
		if err := c.store.WriteTaskFile(s.ID, n, cfg.TaskDescription, status); err != nil {
			return "", storageErr(fmt.Sprintf("writing task file for worker %d", n), err)
		}
	}

	workerID := sessionid.WorkerID(s.ID, 1)
	if _, err := c.spawnAgent(s, workerID, sessionid.RoleWorker, queenID, 1, 0, "", cfg.CLI, cfg.Model); err != nil {
		return "", err
	}

	suspended := cfg
	s.suspended = &suspended
	if cfg.WorkerCount <= 1 {
		s.suspended = nil
		return StateRunning, nil
	}
	s.WaitingForWorkerIndex = 1
	return StateWaitingForWorker, nil
}

// spawnSwarmTeam implements the Swarm team spawn order: queen, then for
// each planner its own layer of workers, all spawned up front since the
// workload is declared in advance (§9).
func (c *Controller) spawnSwarmTeam(s *liveSession, cfg LaunchConfig) (State, error) {
	queenID := sessionid.QueenID(s.ID)
	if _, err := c.spawnAgent(s, queenID, sessionid.RoleQueen, "", 0, 0, "", cfg.CLI, cfg.Model); err != nil {
		return "", err
	}

	workerIndex := 0
	for p := 1; p <= cfg.PlannerCount; p++ {
		plannerID := sessionid.PlannerID(s.ID, p)
		if _, err := c.spawnAgent(s, plannerID, sessionid.RolePlanner, queenID, 0, p, "", cfg.CLI, cfg.Model); err != nil {
			return "", err
		}
		for w := 1; w <= cfg.WorkersPerPlan; w++ {
			workerIndex++
			if err := c.store.WriteTaskFile(s.ID, workerIndex, cfg.TaskDescription, store.TaskActive); err != nil {
				return "", storageErr(fmt.Sprintf("writing task file for worker %d", workerIndex), err)
			}
			workerID := sessionid.PlannerWorkerID(s.ID, p, w)
			if _, err := c.spawnAgent(s, workerID, sessionid.RolePlannerWorker, plannerID, workerIndex, p, "", cfg.CLI, cfg.Model); err != nil {
				return "", err
			}
		}
	}
	return StateRunning, nil
}

// spawnFusionTeam implements the Fusion team spawn order: all variants in
// parallel. The judge is spawned later, when the last variant signals
// completion (see progress.go).
func (c *Controller) spawnFusionTeam(s *liveSession, cfg LaunchConfig) (State, error) {
	for i, variant := range cfg.VariantNames {
		index := i + 1
		if err := c.store.WriteTaskFile(s.ID, index, cfg.TaskDescription, store.TaskActive); err != nil {
			return "", storageErr(fmt.Sprintf("writing task file for variant %s", variant), err)
		}
		variantID := sessionid.FusionVariantID(s.ID, variant)
		if _, err := c.spawnAgent(s, variantID, sessionid.RoleFusionVariant, "", index, 0, variant, cfg.CLI, cfg.Model); err != nil {
			return "", err
		}
	}
	return StateRunning, nil
}

// spawnSoloAgent implements launch_solo: a single worker-role agent with
// its own task file, already ACTIVE.
func (c *Controller) spawnSoloAgent(s *liveSession, cfg LaunchConfig) (State, error) {
	if err := c.store.WriteTaskFile(s.ID, 1, cfg.TaskDescription, store.TaskActive); err != nil {
		return "", storageErr("writing task file for solo agent", err)
	}
	agentID := sessionid.WorkerID(s.ID, 1)
	if _, err := c.spawnAgent(s, agentID, sessionid.RoleWorker, "", 1, 0, "", cfg.CLI, cfg.Model); err != nil {
		return "", err
	}
	return StateRunning, nil
}

// ContinueAfterPlanning implements §4.E's "Continuation after planning":
// kill the Master Planner, read back pending-config.json, and spawn the
// real team for the session's shape.
func (c *Controller) ContinueAfterPlanning(id string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return Snapshot{}, notFoundErr(fmt.Sprintf("session %s not found", id))
	}
	if s.State != StatePlanning && s.State != StatePlanReady {
		return Snapshot{}, invalidErr(fmt.Sprintf("session %s is not awaiting plan continuation (state %s)", id, s.State))
	}

	plannerID := sessionid.MasterPlannerID(id)
	if err := c.pty.Kill(plannerID); err != nil {
		return c.fail(s, terminationErr("killing master planner", err))
	}
	if a, i := s.agentByID(plannerID); a != nil {
		s.Agents = append(s.Agents[:i], s.Agents[i+1:]...)
	}

	var cfg LaunchConfig
	if err := c.store.LoadPendingConfig(id, &cfg); err != nil {
		return Snapshot{}, storageErr(fmt.Sprintf("loading pending config for %s", id), err)
	}

	var spawn teamSpawner
	switch cfg.Shape {
	case ShapeSwarm:
		spawn = c.spawnSwarmTeam
	default:
		spawn = c.spawnHiveTeam
	}

	// Unlike a fresh launch, a continuation failure does not fail the
	// session: §4.E says "continuation failures leave the session in
	// Planning/PlanReady so the operator can retry." Any agents spawned
	// before the failure are unwound and the state is left untouched.
	state, err := spawn(s, cfg)
	if err != nil {
		c.unwind(s)
		return s.Snapshot, err
	}

	s.State = state
	if err := c.saveLocked(s); err != nil {
		c.unwind(s)
		return s.Snapshot, err
	}

	if err := c.store.DeletePendingConfig(id); err != nil {
		c.logger.Printf("session %s: deleting pending config: %v", id, err)
	}
	return s.Snapshot, nil
}

// MarkPlanReady transitions a session from Planning to PlanReady once the
// operator has reviewed plan.md.
func (c *Controller) MarkPlanReady(id string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return Snapshot{}, notFoundErr(fmt.Sprintf("session %s not found", id))
	}
	if s.State != StatePlanning {
		return Snapshot{}, invalidErr(fmt.Sprintf("session %s is not in Planning (state %s)", id, s.State))
	}
	s.State = StatePlanReady
	if err := c.saveLocked(s); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot, nil
}
