package httpapi

import (
	"net/http"

	"github.com/rdfitted/hive-manager/internal/security"
)

// injectRequest is the operator-inject body: `{target_agent_id, message}`.
type injectRequest struct {
	TargetAgentID string `json:"target_agent_id"`
	Message       string `json:"message"`
}

func (h *Handler) handleInject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req injectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.TargetAgentID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "target_agent_id and message are required")
		return
	}
	if err := h.inject.OperatorInject(id, req.TargetAgentID, req.Message); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "injected"})
}

// queenInjectRequest is the queen-inject body: `{queen_id, target_worker_id,
// message}`.
type queenInjectRequest struct {
	QueenID        string `json:"queen_id"`
	TargetWorkerID string `json:"target_worker_id"`
	Message        string `json:"message"`
}

func (h *Handler) handleQueenInject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req queenInjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.QueenID == "" || req.TargetWorkerID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "queen_id, target_worker_id, and message are required")
		return
	}
	if err := h.inject.QueenInject(id, req.QueenID, req.TargetWorkerID, req.Message); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "injected"})
}
