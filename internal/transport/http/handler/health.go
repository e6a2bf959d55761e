package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health-check endpoints. The mail checker may be nil
// when the mail-notification API is not configured.
type HealthHandler struct {
	mail healthChecker
}

func NewHealthHandler(mail healthChecker) *HealthHandler { return &HealthHandler{mail: mail} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action == "ping" {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
		return
	}
	writeError(w, http.StatusBadRequest, "unknown action")
}

// Ready reports whether downstream dependencies answer. Currently that is
// only the mail-notification API.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.mail != nil {
		if err := h.mail.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, MessageEnvelope{Error: "mail API unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ready"})
}
