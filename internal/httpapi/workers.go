package httpapi

import (
	"net/http"

	"github.com/rdfitted/hive-manager/internal/security"
	"github.com/rdfitted/hive-manager/internal/sessionid"
)

// workerSummary is one entry of GET /api/sessions/{id}/workers.
type workerSummary struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CLI         string `json:"cli"`
	Model       string `json:"model,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	WorkerIndex int    `json:"worker_index"`
}

func (h *Handler) handleListWorkers(w http.ResponseWriter, r *http.Request) {
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
	var out []workerSummary
	for _, a := range snap.Agents {
		switch a.Role {
		case sessionid.RoleWorker, sessionid.RolePlannerWorker, sessionid.RoleFusionVariant:
			out = append(out, workerSummary{
				ID: a.ID, Status: string(a.Status), CLI: a.CLI, Model: a.Model,
				ParentID: a.ParentID, WorkerIndex: a.WorkerIndex,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type addWorkerRequest struct {
	CLI         string `json:"cli"`
	Model       string `json:"model"`
	InitialTask string `json:"initial_task"`
	ParentID    string `json:"parent_id"`
}

type addWorkerResponse struct {
	WorkerID string `json:"worker_id"`
	TaskFile string `json:"task_file"`
}

func (h *Handler) handleAddWorker(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req addWorkerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.CLI != "" {
		if err := h.cli.ValidateCLI(req.CLI); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	agent, taskFile, err := h.sessions.AddWorker(id, req.CLI, req.Model, req.InitialTask, req.ParentID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addWorkerResponse{WorkerID: agent.ID, TaskFile: taskFile})
}

// plannerSummary is one entry of GET /api/sessions/{id}/planners.
type plannerSummary struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CLI          string `json:"cli"`
	Model        string `json:"model,omitempty"`
	PlannerIndex int    `json:"planner_index"`
}

func (h *Handler) handleListPlanners(w http.ResponseWriter, r *http.Request) {
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
	var out []plannerSummary
	for _, a := range snap.Agents {
		if a.Role == sessionid.RolePlanner || a.Role == sessionid.RoleMasterPlanner {
			out = append(out, plannerSummary{
				ID: a.ID, Status: string(a.Status), CLI: a.CLI, Model: a.Model, PlannerIndex: a.PlannerIndex,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type addPlannerRequest struct {
	Domain      string `json:"domain"`
	CLI         string `json:"cli"`
	Model       string `json:"model"`
	WorkerCount int    `json:"worker_count"`
}

type addPlannerResponse struct {
	PlannerID  string `json:"planner_id"`
	PromptFile string `json:"prompt_file"`
}

func (h *Handler) handleAddPlanner(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req addPlannerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.CLI != "" {
		if err := h.cli.ValidateCLI(req.CLI); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	agent, promptFile, err := h.sessions.AddPlanner(id, req.CLI, req.Model, req.Domain, req.WorkerCount)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addPlannerResponse{PlannerID: agent.ID, PromptFile: promptFile})
}
