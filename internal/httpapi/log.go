package httpapi

import (
	"net/http"
	"strconv"

	"github.com/rdfitted/hive-manager/internal/security"
)

// logRecord is one entry of GET /api/sessions/{id}/log.
type logRecord struct {
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
}

// handleLog serves the trailing `tail` records (default 100, 0 means all)
// of a session's coordination log, parsed via the store rather than left
// to a client guessing the on-disk layout.
func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := security.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tail := 100
	if raw := r.URL.Query().Get("tail"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "tail must be a non-negative integer")
			return
		}
		tail = n
	}

	records, err := h.store.Read(id, tail)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]logRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, logRecord{
			Timestamp: rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			From:      rec.From,
			To:        rec.To,
			Content:   rec.Content,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
