// Package taskwatch implements the Task File Watcher (§4.C): it watches a
// session's tasks/ directory non-recursively and emits a debounced
// task-completed signal when a worker marks its task file COMPLETED.
//
// Grounded directly on the original TaskFileWatcher (original_source/
// src-tauri/src/watcher/mod.rs): one fsnotify.Watcher per session, and a
// single shared last-emit timestamp guarding every event the watcher
// sees, not one timer per worker — two workers finishing within the same
// window still produce at most one emission.
package taskwatch

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rdfitted/hive-manager/internal/store"
)

// DebounceWindow is the global debounce window mandated by §4.C.
const DebounceWindow = 500 * time.Millisecond

// CompletedEvent is emitted when a worker task file reports completion.
type CompletedEvent struct {
	SessionID   string
	WorkerIndex int
}

// Watcher monitors one session's tasks/ directory.
type Watcher struct {
	sessionID string
	tasksDir  string
	sink      chan<- CompletedEvent
	logger    *log.Logger

	fsw *fsnotify.Watcher

	mu            sync.Mutex
	lastEmittedAt time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Watcher for sessionID, watching tasksDir non-recursively.
// Events are sent to sink; sink should be buffered or drained promptly.
func New(sessionID, tasksDir string, sink chan<- CompletedEvent, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		sessionID: sessionID,
		tasksDir:  tasksDir,
		sink:      sink,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start establishes the filesystem watch and begins processing events in a
// background goroutine. Failure to establish the watch is logged but is
// not fatal — the caller (Session Controller) may still progress via
// explicit HTTP completion notifications, per §4.C's lifecycle contract.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Printf("taskwatch: failed to create watcher for session %s: %v", w.sessionID, err)
		return err
	}
	if err := fsw.Add(w.tasksDir); err != nil {
		w.logger.Printf("taskwatch: failed to watch %s: %v", w.tasksDir, err)
		fsw.Close()
		return err
	}
	w.fsw = fsw

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("taskwatch: watch error for session %s: %v", w.sessionID, err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	name := filepath.Base(event.Name)
	workerIndex, ok := store.ParseWorkerIndex(name)
	if !ok {
		return
	}

	status, completed, err := store.ReadTaskFileStatus(event.Name)
	_ = status
	if err != nil || !completed {
		return
	}

	w.mu.Lock()
	if time.Since(w.lastEmittedAt) < DebounceWindow {
		w.mu.Unlock()
		return
	}
	w.lastEmittedAt = time.Now()
	w.mu.Unlock()

	select {
	case w.sink <- CompletedEvent{SessionID: w.sessionID, WorkerIndex: workerIndex}:
	default:
		w.logger.Printf("taskwatch: sink full, dropping task-completed for session %s worker %d", w.sessionID, workerIndex)
	}
}

// Stop terminates the watcher and blocks until its goroutine has exited.
func (w *Watcher) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	<-w.doneCh
}
