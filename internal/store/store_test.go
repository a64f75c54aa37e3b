package store

import (
	"testing"
	"time"
)

type fakeSnapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Shape     string    `json:"shape"`
}

func TestCreateSessionDirIsIdempotent(t *testing.T) {
	s := New(t.TempDir())
	if err := s.CreateSessionDir("sess1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := s.CreateSessionDir("sess1"); err != nil {
		t.Fatalf("second create should be a no-op: %v", err)
	}
}

func TestSaveAndLoadSessionRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	want := fakeSnapshot{ID: "sess1", CreatedAt: time.Now().UTC().Truncate(time.Second), Shape: "hive"}
	if err := s.SaveSession("sess1", want); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	var got fakeSnapshot
	if err := s.LoadSession("sess1", &got); err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoadSessionNotFound(t *testing.T) {
	s := New(t.TempDir())
	var out fakeSnapshot
	if err := s.LoadSession("missing", &out); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrdersByCreatedAtDescending(t *testing.T) {
	s := New(t.TempDir())
	older := fakeSnapshot{ID: "older", CreatedAt: time.Now().Add(-time.Hour)}
	newer := fakeSnapshot{ID: "newer", CreatedAt: time.Now()}
	if err := s.SaveSession(older.ID, older); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSession(newer.ID, newer); err != nil {
		t.Fatal(err)
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 || ids[0] != "newer" || ids[1] != "older" {
		t.Fatalf("got %v, want [newer older]", ids)
	}
}

func TestListOnEmptyStoreIsEmpty(t *testing.T) {
	s := New(t.TempDir())
	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no sessions, got %v", ids)
	}
}

func TestAppendThenRead(t *testing.T) {
	s := New(t.TempDir())
	defer s.Close()

	if err := s.Append("sess1", "queen", "worker-1", "start the task"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("sess1", "worker-1", "queen", "done"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := s.Read("sess1", 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].From != "queen" || records[0].To != "worker-1" || records[0].Content != "start the task" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].From != "worker-1" || records[1].To != "queen" || records[1].Content != "done" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestReadRespectsLimit(t *testing.T) {
	s := New(t.TempDir())
	defer s.Close()

	for i := 0; i < 5; i++ {
		if err := s.Append("sess1", "a", "b", "msg"); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.Read("sess1", 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestReadOnMissingLogReturnsEmpty(t *testing.T) {
	s := New(t.TempDir())
	records, err := s.Read("never-created", 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if records != nil {
		t.Fatalf("expected nil records, got %v", records)
	}
}

func TestPendingConfigRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	type cfg struct {
		ProjectPath string `json:"project_path"`
	}
	want := cfg{ProjectPath: "/tmp/project"}
	if err := s.SavePendingConfig("sess1", want); err != nil {
		t.Fatalf("SavePendingConfig: %v", err)
	}

	var got cfg
	if err := s.LoadPendingConfig("sess1", &got); err != nil {
		t.Fatalf("LoadPendingConfig: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := s.DeletePendingConfig("sess1"); err != nil {
		t.Fatalf("DeletePendingConfig: %v", err)
	}
	if err := s.LoadPendingConfig("sess1", &got); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeletePendingConfigMissingIsNotAnError(t *testing.T) {
	s := New(t.TempDir())
	if err := s.DeletePendingConfig("never-had-one"); err != nil {
		t.Fatalf("deleting a nonexistent pending config should be a no-op: %v", err)
	}
}
