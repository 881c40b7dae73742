package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mesa-alloc/internal/core/domain"
)

const maxBodyBytes = 4 << 20

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusOf maps error kinds to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCampaignNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPersistConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.writeJSON(w, status, errorBody{Error: err.Error(), Kind: domain.ErrorKind(err)})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "bad_request"})
}

func campaignID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}
