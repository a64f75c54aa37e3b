package httpapi

import (
	"net/http"

	"github.com/rdfitted/hive-manager/internal/security"
)

// heartbeatRequest is `POST /api/sessions/{id}/heartbeat`'s body:
// `{agent_id, status ∈ {working,idle,completed}, summary?}`.
type heartbeatRequest struct {
	AgentID string `json:"agent_id"`
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

var validHeartbeatStatuses = map[string]bool{"working": true, "idle": true, "completed": true}

func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req heartbeatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.AgentID == "" || !validHeartbeatStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "agent_id is required and status must be one of working, idle, completed")
		return
	}
	if err := h.sessions.Heartbeat(id, req.AgentID, req.Status, req.Summary); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "heartbeat recorded"})
}

func (h *Handler) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.ActiveSessions())
}
