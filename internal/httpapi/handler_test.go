package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rdfitted/hive-manager/internal/config"
	"github.com/rdfitted/hive-manager/internal/inject"
	"github.com/rdfitted/hive-manager/internal/ptymgr"
	"github.com/rdfitted/hive-manager/internal/session"
	"github.com/rdfitted/hive-manager/internal/store"
)

type noopSink struct{}

func (noopSink) EmitOutput(ptymgr.OutputEvent)                                      {}
func (noopSink) EmitStatus(ptymgr.StatusEvent)                                      {}
func (noopSink) EmitCoordinationMessage(string, string, string, string, inject.Kind) {}

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testConfig() *config.Config {
	return &config.Config{
		CLIRegistry: map[string]config.CLIEntry{
			"claude": {
				Command:          "true",
				PromptArgStyle:   config.PromptArgFlagP,
				ToleranceProfile: "ExplicitPolling",
			},
		},
		RoleDefaults: map[string]config.RoleDefaults{
			"queen":          {CLI: "claude", Cols: 80, Rows: 24},
			"master_planner": {CLI: "claude", Cols: 80, Rows: 24},
			"planner":        {CLI: "claude", Cols: 80, Rows: 24},
			"worker":         {CLI: "claude", Cols: 80, Rows: 24},
			"variant":        {CLI: "claude", Cols: 80, Rows: 24},
			"judge":          {CLI: "claude", Cols: 80, Rows: 24},
		},
		StallCheckInterval: 60 * time.Second,
		StallThreshold:     180 * time.Second,
	}
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()
	st := store.New(dir)
	pty := ptymgr.New(noopSink{}, testLogger())
	inj := inject.New(pty, st, noopSink{}, testLogger())
	cfg := testConfig()
	ctrl := session.New(st, pty, inj, cfg, nil, testLogger())
	return NewHandler(ctrl, inj, st, cfg, testLogger())
}

func doRequest(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := doRequest(mux, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestLaunchHiveThenGetSession(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := doRequest(mux, http.MethodPost, "/api/sessions/hive", launchRequest{
		ProjectPath: t.TempDir(),
		WorkerCount: 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("launch status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp launchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode launch response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a non-empty session id")
	}

	rec = doRequest(mux, http.MethodGet, "/api/sessions/"+resp.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestLaunchHiveRejectsMissingProjectPath(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := doRequest(mux, http.MethodPost, "/api/sessions/hive", launchRequest{
		ProjectPath: "/does/not/exist",
		WorkerCount: 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetSessionRejectsPathTraversalID(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := doRequest(mux, http.MethodGet, "/api/sessions/../../etc/passwd", nil)
	// net/http's own path cleaning collapses ".." before the mux ever sees
	// it, so this exercises the same guard as a literal ".." in a segment.
	if rec.Code == http.StatusOK {
		t.Fatalf("expected a non-200 status for a traversal-shaped session id, got %d", rec.Code)
	}
}

func TestStopUnknownSessionIsNotFound(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := doRequest(mux, http.MethodPost, "/api/sessions/does-not-exist/stop", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHeartbeatRejectsInvalidStatus(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	snapRec := doRequest(mux, http.MethodPost, "/api/sessions/hive", launchRequest{
		ProjectPath: t.TempDir(),
		WorkerCount: 1,
	})
	var resp launchResponse
	json.Unmarshal(snapRec.Body.Bytes(), &resp)

	rec := doRequest(mux, http.MethodPost, "/api/sessions/"+resp.SessionID+"/heartbeat", heartbeatRequest{
		AgentID: "some-agent",
		Status:  "not-a-real-status",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
