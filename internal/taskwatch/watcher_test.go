package taskwatch

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rdfitted/hive-manager/internal/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func waitForEvent(t *testing.T, sink <-chan CompletedEvent, timeout time.Duration) CompletedEvent {
	t.Helper()
	select {
	case ev := <-sink:
		return ev
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a task-completed event")
		return CompletedEvent{}
	}
}

func TestWatcherEmitsOnTaskFileCompletion(t *testing.T) {
	dir := t.TempDir()
	sink := make(chan CompletedEvent, 4)
	w := New("sess1", dir, sink, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, store.TaskFileName(1))
	if err := os.WriteFile(path, []byte("## Status: STANDBY\n"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if err := os.WriteFile(path, []byte("## Status: COMPLETED\n"), 0644); err != nil {
		t.Fatalf("write completed: %v", err)
	}

	ev := waitForEvent(t, sink, 2*time.Second)
	if ev.SessionID != "sess1" || ev.WorkerIndex != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestWatcherIgnoresNonTaskFiles(t *testing.T) {
	dir := t.TempDir()
	sink := make(chan CompletedEvent, 4)
	w := New("sess1", dir, sink, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("## Status: COMPLETED\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-sink:
		t.Fatalf("expected no event for a non-task file, got %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherDebouncesRepeatedCompletion(t *testing.T) {
	dir := t.TempDir()
	sink := make(chan CompletedEvent, 4)
	w := New("sess1", dir, sink, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, store.TaskFileName(2))
	if err := os.WriteFile(path, []byte("## Status: COMPLETED\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitForEvent(t, sink, 2*time.Second)

	// Rewriting the same content within the debounce window must not emit
	// a second event.
	if err := os.WriteFile(path, []byte("## Status: COMPLETED\n"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case ev := <-sink:
		t.Fatalf("expected the second write to be debounced, got %+v", ev)
	case <-time.After(DebounceWindow / 2):
	}
}

func TestWatcherDebounceIsGlobalAcrossWorkers(t *testing.T) {
	dir := t.TempDir()
	sink := make(chan CompletedEvent, 4)
	w := New("sess1", dir, sink, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path1 := filepath.Join(dir, store.TaskFileName(1))
	if err := os.WriteFile(path1, []byte("## Status: COMPLETED\n"), 0644); err != nil {
		t.Fatalf("write worker 1: %v", err)
	}
	waitForEvent(t, sink, 2*time.Second)

	// A second, different worker completing inside the same global window
	// must still be suppressed — the debounce is session-wide, not
	// per-worker.
	path2 := filepath.Join(dir, store.TaskFileName(2))
	if err := os.WriteFile(path2, []byte("## Status: COMPLETED\n"), 0644); err != nil {
		t.Fatalf("write worker 2: %v", err)
	}

	select {
	case ev := <-sink:
		t.Fatalf("expected worker 2's completion to be suppressed by the global debounce window, got %+v", ev)
	case <-time.After(DebounceWindow / 2):
	}
}

func TestStopIsIdempotentAndBlocksUntilLoopExits(t *testing.T) {
	dir := t.TempDir()
	sink := make(chan CompletedEvent, 1)
	w := New("sess1", dir, sink, testLogger())

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	w.Stop()
	w.Stop() // must not panic or block forever on a second call
}

func TestStartOnMissingDirectoryReturnsError(t *testing.T) {
	sink := make(chan CompletedEvent, 1)
	w := New("sess1", filepath.Join(t.TempDir(), "does-not-exist"), sink, testLogger())

	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected an error watching a nonexistent directory")
	}
}
