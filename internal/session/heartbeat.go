package session

import "time"

// Heartbeat records a liveness signal for an agent, per §4.E's "Heartbeat
// storage is per-agent, overwrite-on-write" — see §9's open question:
// future diagnostics may want history, but current scope is last-write-
// wins, so this intentionally does not append.
func (c *Controller) Heartbeat(sessionID, agentID, status, summary string) error {
	if _, err := c.get(sessionID); err != nil {
		return err
	}

	c.hbMu.Lock()
	c.heartbeats[agentID] = heartbeatRecord{
		sessionID: sessionID,
		status:    status,
		summary:   summary,
		seenAt:    time.Now(),
	}
	c.hbMu.Unlock()
	return nil
}

// activeHeartbeats returns the current per-agent heartbeat table, used by
// the HTTP API's `GET /api/sessions/active` and by StallMonitor.
func (c *Controller) activeHeartbeats() map[string]heartbeatRecord {
	c.hbMu.Lock()
	defer c.hbMu.Unlock()
	out := make(map[string]heartbeatRecord, len(c.heartbeats))
	for k, v := range c.heartbeats {
		out[k] = v
	}
	return out
}

// ActiveSessions implements `GET /api/sessions/active`: running sessions
// together with the most recent heartbeat seen for each of their agents.
type ActiveAgent struct {
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Controller) ActiveSessions() map[string][]ActiveAgent {
	hb := c.activeHeartbeats()

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]ActiveAgent)
	for id, s := range c.sessions {
		if s.State == StateCompleted || s.State == StateFailed {
			continue
		}
		var agents []ActiveAgent
		for _, a := range s.Agents {
			rec, ok := hb[a.ID]
			if !ok {
				continue
			}
			agents = append(agents, ActiveAgent{AgentID: a.ID, Status: rec.status, Summary: rec.summary, UpdatedAt: rec.seenAt})
		}
		if len(agents) > 0 {
			out[id] = agents
		}
	}
	return out
}
