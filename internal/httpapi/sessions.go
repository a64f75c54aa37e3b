package httpapi

import (
	"net/http"

	"github.com/rdfitted/hive-manager/internal/security"
	"github.com/rdfitted/hive-manager/internal/session"
)

// sessionSummary is the JSON shape of one entry in GET /api/sessions.
type sessionSummary struct {
	ID          string `json:"id"`
	Shape       string `json:"shape"`
	State       string `json:"state"`
	ProjectPath string `json:"project_path"`
	AgentCount  int    `json:"agent_count"`
}

func toSummary(s session.Snapshot) sessionSummary {
	return sessionSummary{
		ID:          s.ID,
		Shape:       string(s.Shape),
		State:       string(s.State),
		ProjectPath: s.ProjectPath,
		AgentCount:  len(s.Agents),
	}
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	snaps := h.sessions.List()
	out := make([]sessionSummary, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, toSummary(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// launchRequest covers every field any of the four launch operations
// accepts; each handler reads only the fields relevant to its shape.
type launchRequest struct {
	ProjectPath     string   `json:"project_path"`
	WorkerCount     int      `json:"worker_count"`
	PlannerCount    int      `json:"planner_count"`
	WorkersPerPlan  int      `json:"workers_per_planner"`
	VariantNames    []string `json:"variant_names"`
	TaskDescription string   `json:"task_description"`
	CLI             string   `json:"cli"`
	Model           string   `json:"model"`
	WithPlanning    bool     `json:"with_planning"`
}

// validateLaunch enforces §6's shared launch-request rules: project path
// must exist and be a directory with no traversal, and an explicit CLI
// override must be in the static allowlist.
func (h *Handler) validateLaunch(req launchRequest) error {
	if err := security.ValidateProjectPath(req.ProjectPath); err != nil {
		return err
	}
	if req.CLI != "" {
		if err := h.cli.ValidateCLI(req.CLI); err != nil {
			return err
		}
	}
	return nil
}

func launchConfigFrom(req launchRequest) session.LaunchConfig {
	return session.LaunchConfig{
		ProjectPath:     req.ProjectPath,
		WorkerCount:     req.WorkerCount,
		PlannerCount:    req.PlannerCount,
		WorkersPerPlan:  req.WorkersPerPlan,
		VariantNames:    req.VariantNames,
		TaskDescription: req.TaskDescription,
		CLI:             req.CLI,
		Model:           req.Model,
		WithPlanning:    req.WithPlanning,
	}
}

type launchResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (h *Handler) handleLaunchHive(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if err := h.validateLaunch(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.LaunchHive(launchConfigFrom(req))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, launchResponse{SessionID: snap.ID, Message: "hive session launched"})
}

func (h *Handler) handleLaunchSwarm(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if err := h.validateLaunch(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.LaunchSwarm(launchConfigFrom(req))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, launchResponse{SessionID: snap.ID, Message: "swarm session launched"})
}

// handleLaunchFusion and handleLaunchSolo are not named by §6's endpoint
// table, which only documents hive/swarm launches, but core's
// launch_fusion/launch_solo operations need some HTTP door — they are
// exposed at the same /api/sessions/{shape} shape the table already
// establishes, rather than left with no caller outside of tests.
func (h *Handler) handleLaunchFusion(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if err := h.validateLaunch(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.LaunchFusion(launchConfigFrom(req))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, launchResponse{SessionID: snap.ID, Message: "fusion session launched"})
}

func (h *Handler) handleLaunchSolo(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if err := h.validateLaunch(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.LaunchSolo(launchConfigFrom(req))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, launchResponse{SessionID: snap.ID, Message: "solo session launched"})
}

func (h *Handler) handleStopSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.Stop(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "session " + snap.ID + " stopped"})
}

// handlePlanReady and handleContinue expose §4.E's planning-continuation
// pair, named as core operations but absent from §6's endpoint table —
// without these doors an operator running with --with-planning would have
// no way to approve a plan or resume the team through the HTTP API.
func (h *Handler) handlePlanReady(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.MarkPlanReady(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(snap))
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.sessions.ContinueAfterPlanning(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(snap))
}
