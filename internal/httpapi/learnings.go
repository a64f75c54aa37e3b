package httpapi

import (
	"net/http"

	"github.com/rdfitted/hive-manager/internal/security"
)

// learningRequest is `POST /api/learnings`'s body:
// `{session, task, outcome ∈ {success,partial,failed}, insight, …}`.
// Persistent storage of learnings is named an external collaborator
// (out of scope for the core) — this handler validates and accepts the
// contract shape and logs it for the operator to wire a real sink onto.
type learningRequest struct {
	Session string `json:"session"`
	Task    string `json:"task"`
	Outcome string `json:"outcome"`
	Insight string `json:"insight"`
}

var validOutcomes = map[string]bool{"success": true, "partial": true, "failed": true}

func (h *Handler) handleLearnings(w http.ResponseWriter, r *http.Request) {
	var req learningRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.Session == "" {
		writeError(w, http.StatusBadRequest, "session is required")
		return
	}
	if err := security.ValidateSessionID(req.Session); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !validOutcomes[req.Outcome] {
		writeError(w, http.StatusBadRequest, "outcome must be one of success, partial, failed")
		return
	}

	h.logger.Printf("learning recorded: session=%s task=%q outcome=%s insight=%q", req.Session, req.Task, req.Outcome, req.Insight)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "learning recorded"})
}
