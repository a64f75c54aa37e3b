package session

import "fmt"

// Resume implements §4.E's "Resume": a persisted session is loaded back
// into memory by reading session.json, reconstituting its agent records
// with status Completed, and emitting a session-update event. No PTYs are
// created and no task watcher is started — a resumed session is inert.
func (c *Controller) Resume(id string) (Snapshot, error) {
	var snapshot Snapshot
	if err := c.store.LoadSession(id, &snapshot); err != nil {
		return Snapshot{}, storageErr(fmt.Sprintf("loading session %s", id), err)
	}

	for i := range snapshot.Agents {
		snapshot.Agents[i].Status = AgentCompleted
	}
	snapshot.State = StateCompleted
	snapshot.WaitingForWorkerIndex = 0
	snapshot.PendingConfig = nil

	s := &liveSession{Snapshot: snapshot}
	c.register(s)
	c.publishSessionUpdate(s)
	return s.Snapshot, nil
}

// ResumeAll loads every session found in the store's on-disk list into
// memory, skipping (and logging) any that fail to parse rather than
// aborting the whole daemon startup.
func (c *Controller) ResumeAll() error {
	ids, err := c.store.List()
	if err != nil {
		return storageErr("listing sessions", err)
	}
	for _, id := range ids {
		if _, err := c.Resume(id); err != nil {
			c.logger.Printf("resuming session %s: %v", id, err)
		}
	}
	return nil
}
