package httpadapter

import (
	"encoding/json"
	"net/http"

	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/validation"
)

// handleSimulate runs the allocation engine on the posted inputs without
// touching any store.
func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.badRequest(w, "unreadable body")
		return
	}
	if err = h.validator.Validate(validation.SimulateRequest, body); err != nil {
		h.writeError(w, r, err)
		return
	}
	var req port.SimulateRequest
	if err = json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}

	res, err := h.svc.Simulate(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
