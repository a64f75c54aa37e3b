package session

import (
	"context"
	"log"
	"time"

	"github.com/rdfitted/hive-manager/internal/events"
)

// StallMonitor is the background task named by §4.E's "Stall detection":
// it wakes periodically, compares each agent's last heartbeat against a
// threshold, and emits agent-stalled / agent-recovered events as the set
// of stalled agents changes.
//
// Grounded directly on original_source/src-tauri/src/lib.rs's stall
// detection task: a 60s ticker comparing every Running session's agents
// against a 180s threshold, diffing the resulting stalled set against the
// previous tick's to emit agent-stalled for newly-stalled pairs and
// agent-recovered for pairs that dropped out. The stopCh/doneCh shutdown
// pair is the teacher's own goroutine-lifecycle idiom
// (internal/controller), since the original has no analogous shutdown
// path to ground that part on (it runs for the life of the process).
type StallMonitor struct {
	controller *Controller
	logger     *log.Logger
	interval   time.Duration
	threshold  time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewStallMonitor builds a StallMonitor for c, using c's configured check
// interval and staleness threshold (§0's defaults: 60s / 180s).
func NewStallMonitor(c *Controller) *StallMonitor {
	return &StallMonitor{
		controller: c,
		logger:     c.logger,
		interval:   c.cfg.StallCheckInterval,
		threshold:  c.cfg.StallThreshold,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start runs the monitor loop until ctx is cancelled or Stop is called.
func (m *StallMonitor) Start(ctx context.Context) {
	defer close(m.doneCh)
	m.logger.Printf("stall monitor: started (interval=%s, threshold=%s)", m.interval, m.threshold)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.check()
		}
	}
}

// Stop signals the monitor to stop and waits for its loop to exit.
func (m *StallMonitor) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

// CheckOnce runs one monitor cycle immediately, for tests.
func (m *StallMonitor) CheckOnce() {
	m.check()
}

func (m *StallMonitor) check() {
	now := time.Now()
	c := m.controller
	hb := c.activeHeartbeats()

	c.hbMu.Lock()
	defer c.hbMu.Unlock()

	for agentID, rec := range hb {
		stale := now.Sub(rec.seenAt) > m.threshold
		wasStalled := c.stalled[agentID]

		switch {
		case stale && !wasStalled:
			c.stalled[agentID] = true
			c.publish(events.NewAgentStalled(rec.sessionID, agentID))
			m.logger.Printf("stall monitor: %s stalled (last heartbeat %s ago)", agentID, now.Sub(rec.seenAt).Round(time.Second))
		case !stale && wasStalled:
			delete(c.stalled, agentID)
			c.publish(events.NewAgentRecovered(rec.sessionID, agentID))
			m.logger.Printf("stall monitor: %s recovered", agentID)
		}
	}
}
