package handler

import (
	"net/http"

	"github.com/bookswap-api/internal/application/match"
	"github.com/bookswap-api/internal/transport/http/middleware"
)

// MatchHandler serves the ranked swap-partner list.
type MatchHandler struct {
	svc match.Service
}

func NewMatchHandler(svc match.Service) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	candidates, err := h.svc.ForUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}
