package httpadapter

import (
	"net/http"
	"time"

	"mesa-alloc/internal/core/domain"
)

const defaultHistoryWindow = 7 * 24 * time.Hour

// handleHistory returns committed passes with period start in [from, to).
// from and to are RFC3339 timestamps; without them the last seven days
// are returned.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r)
	if !ok {
		h.badRequest(w, "invalid campaign id")
		return
	}

	var (
		q    = r.URL.Query()
		to   = time.Now().UTC()
		from time.Time
		err  error
	)
	if s := q.Get("to"); s != "" {
		if to, err = time.Parse(time.RFC3339, s); err != nil {
			h.badRequest(w, "invalid 'to' timestamp")
			return
		}
	}
	from = to.Add(-defaultHistoryWindow)
	if s := q.Get("from"); s != "" {
		if from, err = time.Parse(time.RFC3339, s); err != nil {
			h.badRequest(w, "invalid 'from' timestamp")
			return
		}
	}

	entries, err := h.svc.History(r.Context(), id, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}
