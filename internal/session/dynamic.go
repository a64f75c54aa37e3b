package session

import (
	"fmt"

	"github.com/rdfitted/hive-manager/internal/sessionid"
	"github.com/rdfitted/hive-manager/internal/store"
)

// nextWorkerIndex returns the smallest unused worker slot in s, scanning
// Hive/Swarm/Fusion-style agents uniformly.
func (s *liveSession) nextWorkerIndex() int {
	max := 0
	for _, a := range s.Agents {
		switch a.Role {
		case sessionid.RoleWorker, sessionid.RolePlannerWorker, sessionid.RoleFusionVariant:
			if a.WorkerIndex > max {
				max = a.WorkerIndex
			}
		}
	}
	return max + 1
}

// AddWorker implements `POST /api/sessions/{id}/workers`: it adds one
// worker to a running session, outside of the launch-time team spawn. If
// parentID names a live planner, the new worker is attached to it
// (RolePlannerWorker); otherwise it attaches directly to the queen
// (RoleWorker). The queen is notified via the coordination log so the team
// is aware of the addition.
func (c *Controller) AddWorker(sessionID, cli, model, initialTask, parentID string) (Agent, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return Agent{}, "", notFoundErr(fmt.Sprintf("session %s not found", sessionID))
	}

	index := s.nextWorkerIndex()
	if err := c.store.WriteTaskFile(sessionID, index, initialTask, store.TaskActive); err != nil {
		return Agent{}, "", storageErr(fmt.Sprintf("writing task file for worker %d", index), err)
	}

	role := sessionid.RoleWorker
	parent := sessionid.QueenID(sessionID)
	plannerIndex := 0
	var id string
	if parentID != "" {
		if p, _ := s.agentByID(parentID); p != nil && p.Role == sessionid.RolePlanner {
			role = sessionid.RolePlannerWorker
			parent = parentID
			plannerIndex = p.PlannerIndex
			id = sessionid.PlannerWorkerID(sessionID, plannerIndex, index)
		}
	}
	if id == "" {
		id = sessionid.WorkerID(sessionID, index)
	}

	agent, err := c.spawnAgent(s, id, role, parent, index, plannerIndex, "", cli, model)
	if err != nil {
		return Agent{}, "", err
	}
	if err := c.saveLocked(s); err != nil {
		return Agent{}, "", err
	}

	queenID := sessionid.QueenID(sessionID)
	if c.inject != nil && c.pty.Exists(queenID) {
		if err := c.inject.NotifyQueenWorkerAdded(sessionID, queenID, index); err != nil {
			c.logger.Printf("session %s: notifying queen of new worker %d: %v", sessionID, index, err)
		}
	}

	taskFile := store.TaskFileName(index)
	return agent, taskFile, nil
}

// AddPlanner implements `POST /api/sessions/{id}/planners`: it adds a
// planner (and its own layer of workers) to a running Swarm session.
func (c *Controller) AddPlanner(sessionID, cli, model, taskDescription string, workerCount int) (Agent, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return Agent{}, "", notFoundErr(fmt.Sprintf("session %s not found", sessionID))
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	plannerIndex := 0
	for _, a := range s.Agents {
		if a.Role == sessionid.RolePlanner && a.PlannerIndex > plannerIndex {
			plannerIndex = a.PlannerIndex
		}
	}
	plannerIndex++

	plannerID := sessionid.PlannerID(sessionID, plannerIndex)
	queenID := sessionid.QueenID(sessionID)
	agent, err := c.spawnAgent(s, plannerID, sessionid.RolePlanner, queenID, 0, plannerIndex, "", cli, model)
	if err != nil {
		return Agent{}, "", err
	}

	for w := 1; w <= workerCount; w++ {
		index := s.nextWorkerIndex()
		if err := c.store.WriteTaskFile(sessionID, index, taskDescription, store.TaskActive); err != nil {
			return Agent{}, "", storageErr(fmt.Sprintf("writing task file for worker %d", index), err)
		}
		workerID := sessionid.PlannerWorkerID(sessionID, plannerIndex, w)
		if _, err := c.spawnAgent(s, workerID, sessionid.RolePlannerWorker, plannerID, index, plannerIndex, "", cli, model); err != nil {
			return Agent{}, "", err
		}
	}

	if err := c.saveLocked(s); err != nil {
		return Agent{}, "", err
	}

	promptFile := plannerID + "-prompt.md"
	return agent, promptFile, nil
}
