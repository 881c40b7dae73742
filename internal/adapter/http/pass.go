package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"

	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/validation"
)

// handleRunPass triggers an allocation pass. The optional body may pin
// the period start; a pass that is not due answers 200 with status
// "skipped".
func (h *Handler) handleRunPass(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r)
	if !ok {
		h.badRequest(w, "invalid campaign id")
		return
	}
	req := port.PassRequest{CampaignID: id}

	body, err := readBody(r)
	if err != nil {
		h.badRequest(w, "unreadable body")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err = h.validator.Validate(validation.PassTrigger, body); err != nil {
			h.writeError(w, r, err)
			return
		}
		if err = json.Unmarshal(body, &req); err != nil {
			h.badRequest(w, "invalid JSON")
			return
		}
		req.CampaignID = id
	}

	res, err := h.svc.RunPass(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// handleLatest returns the current allocation record of a campaign, or 404
// when no pass has completed yet.
func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r)
	if !ok {
		h.badRequest(w, "invalid campaign id")
		return
	}
	rec, err := h.svc.Latest(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rec == nil {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "no allocation yet", Kind: "not_found"})
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}
