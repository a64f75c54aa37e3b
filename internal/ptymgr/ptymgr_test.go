package ptymgr

import (
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// recordingSink collects every event it receives, guarded by a mutex since
// the reader goroutine emits concurrently with test assertions.
type recordingSink struct {
	mu      sync.Mutex
	output  []OutputEvent
	statuses []StatusEvent
}

func (s *recordingSink) EmitOutput(e OutputEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = append(s.output, e)
}

func (s *recordingSink) EmitStatus(e StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, e)
}

func (s *recordingSink) combinedOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, e := range s.output {
		b.Write(e.Bytes)
	}
	return b.String()
}

func (s *recordingSink) lastStatus() (StatusEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return StatusEvent{}, false
	}
	return s.statuses[len(s.statuses)-1], true
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	m := New(&recordingSink{}, testLogger())
	if err := m.Create("a1", "worker", "sh", []string{"-c", "sleep 1"}, "", 80, 24); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	defer m.Kill("a1")

	if err := m.Create("a1", "worker", "sh", []string{"-c", "sleep 1"}, "", 80, 24); err == nil {
		t.Fatal("expected an error creating a second record under the same id")
	}
}

func TestCreateStreamsOutputAndReachesCompleted(t *testing.T) {
	sink := &recordingSink{}
	m := New(sink, testLogger())

	if err := m.Create("a1", "worker", "sh", []string{"-c", "echo hello-from-agent"}, "", 80, 24); err != nil {
		t.Fatalf("Create: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return strings.Contains(sink.combinedOutput(), "hello-from-agent")
	})

	waitFor(t, 2*time.Second, func() bool {
		st, err := m.Status("a1")
		return err == nil && st == StatusCompleted
	})

	last, ok := sink.lastStatus()
	if !ok || last.Status != StatusCompleted {
		t.Fatalf("expected the final emitted status to be Completed, got %+v (ok=%v)", last, ok)
	}
}

func TestWriteToUnknownIDReturnsNotFound(t *testing.T) {
	m := New(&recordingSink{}, testLogger())
	if err := m.Write("missing", []byte("hi\n")); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKillUnknownIDIsNoop(t *testing.T) {
	m := New(&recordingSink{}, testLogger())
	if err := m.Kill("missing"); err != nil {
		t.Fatalf("killing an absent record should be a no-op, got %v", err)
	}
}

func TestKillStopsARunningProcess(t *testing.T) {
	sink := &recordingSink{}
	m := New(sink, testLogger())

	if err := m.Create("a1", "worker", "sh", []string{"-c", "sleep 30"}, "", 80, 24); err != nil {
		t.Fatalf("Create: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		st, err := m.Status("a1")
		return err == nil && st == StatusRunning
	})

	if err := m.Kill("a1"); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		st, err := m.Status("a1")
		return err == nil && st == StatusCompleted
	})
}

func TestListAndExists(t *testing.T) {
	m := New(&recordingSink{}, testLogger())
	if m.Exists("a1") {
		t.Fatal("a freshly constructed Manager should have no records")
	}

	if err := m.Create("a1", "worker", "sh", []string{"-c", "sleep 1"}, "", 80, 24); err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer m.Kill("a1")

	if !m.Exists("a1") {
		t.Fatal("expected a1 to exist after Create")
	}
	roles := m.List()
	if roles["a1"] != "worker" {
		t.Fatalf("List()[a1] = %q, want %q", roles["a1"], "worker")
	}
}

func TestRemoveDropsTheRecord(t *testing.T) {
	m := New(&recordingSink{}, testLogger())
	if err := m.Create("a1", "worker", "sh", []string{"-c", "echo hi"}, "", 80, 24); err != nil {
		t.Fatalf("Create: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		st, err := m.Status("a1")
		return err == nil && st == StatusCompleted
	})

	m.Remove("a1")
	if m.Exists("a1") {
		t.Fatal("expected a1 to be gone after Remove")
	}
	if _, err := m.Status("a1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after Remove, got %v", err)
	}
}
