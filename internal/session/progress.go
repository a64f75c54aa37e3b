package session

import (
	"fmt"

	"github.com/rdfitted/hive-manager/internal/sessionid"
	"github.com/rdfitted/hive-manager/internal/store"
)

// handleTaskCompleted reacts to a task-completed{session, n} signal from
// the Task File Watcher (or the equivalent explicit HTTP signal), per
// §4.E. Behavior depends on the session's shape: Hive runs the strict
// sequential worker-progression algorithm; Swarm and Fusion workers are
// already spawned in parallel and only need their own status recorded;
// Fusion additionally spawns the judge once every variant is done; Solo
// completes the session outright.
func (c *Controller) handleTaskCompleted(sessionID string, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return notFoundErr(fmt.Sprintf("session %s not found", sessionID))
	}

	switch s.Shape {
	case ShapeHive:
		return c.progressHiveLocked(s, n)
	case ShapeFusion:
		return c.progressFusionLocked(s, n)
	default:
		return c.markWorkerCompletedLocked(s, n)
	}
}

// markWorkerCompletedLocked kills the agent occupying worker slot n and
// marks it Completed, without altering session state. Used by Swarm
// (workers are independent) and as a building block for Hive/Fusion.
func (c *Controller) markWorkerCompletedLocked(s *liveSession, n int) error {
	agent, i := s.agentByWorkerIndex(n)
	if agent == nil {
		c.logger.Printf("session %s: task-completed(%d): no agent in that slot, ignoring", s.ID, n)
		return nil
	}
	if err := c.pty.Kill(agent.ID); err != nil {
		c.logger.Printf("session %s: killing %s: %v", s.ID, agent.ID, err)
	}
	s.Agents[i].Status = AgentCompleted
	return c.saveLocked(s)
}

// progressHiveLocked implements §4.E's "Sequential worker progression".
func (c *Controller) progressHiveLocked(s *liveSession, n int) error {
	if s.State != StateWaitingForWorker || s.WaitingForWorkerIndex != n {
		c.logger.Printf("session %s: task-completed(%d) received in state %s (waiting for %d), ignoring",
			s.ID, n, s.State, s.WaitingForWorkerIndex)
		return nil
	}

	agent, i := s.agentByWorkerIndex(n)
	if agent == nil {
		return notFoundErr(fmt.Sprintf("session %s: no agent for worker %d", s.ID, n))
	}
	if err := c.pty.Kill(agent.ID); err != nil {
		c.logger.Printf("session %s: killing worker %d: %v", s.ID, n, err)
	}
	s.Agents[i].Status = AgentCompleted

	if s.suspended == nil {
		s.State = StateRunning
		return c.saveLocked(s)
	}

	next, ok := c.selector.Next(s.suspended, n)
	if !ok {
		s.State = StateRunning
		s.suspended = nil
		return c.saveLocked(s)
	}

	cfg := s.suspended
	if err := c.store.WriteTaskFile(s.ID, next, cfg.TaskDescription, store.TaskActive); err != nil {
		return c.saveAfterErr(s, storageErr(fmt.Sprintf("writing task file for worker %d", next), err))
	}
	queenID := sessionid.QueenID(s.ID)
	workerID := sessionid.WorkerID(s.ID, next)
	if _, err := c.spawnAgent(s, workerID, sessionid.RoleWorker, queenID, next, 0, "", cfg.CLI, cfg.Model); err != nil {
		return c.saveAfterErr(s, err)
	}

	s.WaitingForWorkerIndex = next
	return c.saveLocked(s)
}

// progressFusionLocked marks variant n Completed and, once every variant
// has reported completion, spawns the judge.
func (c *Controller) progressFusionLocked(s *liveSession, n int) error {
	if err := c.markWorkerCompletedLocked(s, n); err != nil {
		return err
	}

	for _, a := range s.Agents {
		if a.Role == sessionid.RoleFusionVariant && a.Status != AgentCompleted {
			return nil
		}
	}

	judgeID := sessionid.JudgeID(s.ID)
	cfg := s.suspended
	cli, model := "", ""
	if cfg != nil {
		cli, model = cfg.CLI, cfg.Model
	}
	if _, err := c.spawnAgent(s, judgeID, sessionid.RoleJudge, "", 0, 0, "", cli, model); err != nil {
		return c.saveAfterErr(s, err)
	}
	return c.saveLocked(s)
}

// saveAfterErr transitions s to Failed on a mid-progression failure (a
// spawn or write failing between two live workers is not recoverable the
// way a fresh launch's unwind is, since the prior worker is already gone)
// and returns the original error to the caller.
func (c *Controller) saveAfterErr(s *liveSession, cause error) error {
	s.State = StateFailed
	s.FailureReason = cause.Error()
	if err := c.store.SaveSession(s.ID, s.Snapshot); err != nil {
		c.logger.Printf("session %s: saving failed state: %v", s.ID, err)
	}
	c.publishSessionUpdate(s)
	return cause
}
