package events

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSink(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "events-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	t.Run("create and write events", func(t *testing.T) {
		sink, err := NewFileSink(tmpDir)
		if err != nil {
			t.Fatalf("failed to create file sink: %v", err)
		}

		expectedPath := filepath.Join(tmpDir, DefaultFilename)
		if sink.Path() != expectedPath {
			t.Errorf("Path() = %q, want %q", sink.Path(), expectedPath)
		}

		if err := sink.Write(NewPTYOutput("sess1", "sess1-queen", []byte("hello"))); err != nil {
			t.Fatalf("failed to write event: %v", err)
		}
		if err := sink.Write(NewCoordinationMessage("sess1", "QUEEN", "WORKER-1", "go", "task")); err != nil {
			t.Fatalf("failed to write event: %v", err)
		}

		if err := sink.Close(); err != nil {
			t.Fatalf("failed to close sink: %v", err)
		}

		readBack, err := ReadEvents(sink.Path())
		if err != nil {
			t.Fatalf("failed to read events: %v", err)
		}

		if len(readBack) != 2 {
			t.Fatalf("expected 2 events, got %d", len(readBack))
		}
		if readBack[0].Type != TypePTYOutput {
			t.Errorf("event[0].Type = %q, want %q", readBack[0].Type, TypePTYOutput)
		}
		if readBack[1].Type != TypeCoordinationMessage {
			t.Errorf("event[1].Type = %q, want %q", readBack[1].Type, TypeCoordinationMessage)
		}
	})

	t.Run("append mode", func(t *testing.T) {
		dir, err := os.MkdirTemp("", "events-append-*")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)

		sink1, _ := NewFileSink(dir)
		_ = sink1.Write(NewAgentStalled("sess1", "sess1-worker-1"))
		sink1.Close()

		sink2, _ := NewFileSink(dir)
		_ = sink2.Write(NewAgentRecovered("sess1", "sess1-worker-1"))
		sink2.Close()

		readBack, _ := ReadEvents(filepath.Join(dir, DefaultFilename))
		if len(readBack) != 2 {
			t.Errorf("expected 2 events after append, got %d", len(readBack))
		}
	})

	t.Run("double close", func(t *testing.T) {
		dir, _ := os.MkdirTemp("", "events-double-*")
		defer os.RemoveAll(dir)

		sink, _ := NewFileSink(dir)
		sink.Close()

		if err := sink.Close(); err != nil {
			t.Errorf("second Close() returned error: %v", err)
		}
	})
}

func TestFileSinkFollowsBus(t *testing.T) {
	dir, err := os.MkdirTemp("", "events-follow-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("failed to create file sink: %v", err)
	}

	bus := NewBus()
	cancel := sink.Follow(bus)

	bus.Publish(NewPlanUpdate("sess1", map[string]string{"status": "ready"}))
	cancel() // blocks until the forwarding goroutine has drained the channel
	sink.Close()

	readBack, err := ReadEvents(sink.Path())
	if err != nil {
		t.Fatalf("failed to read events: %v", err)
	}
	if len(readBack) != 1 || readBack[0].Type != TypePlanUpdate {
		t.Fatalf("expected one plan-update event, got %+v", readBack)
	}
}

func TestReadEventsInvalidFile(t *testing.T) {
	t.Run("non-existent file", func(t *testing.T) {
		_, err := ReadEvents("/non/existent/file.jsonl")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tmpFile, _ := os.CreateTemp("", "invalid-*.jsonl")
		tmpFile.WriteString("not valid json\n")
		tmpFile.Close()
		defer os.Remove(tmpFile.Name())

		_, err := ReadEvents(tmpFile.Name())
		if err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}
