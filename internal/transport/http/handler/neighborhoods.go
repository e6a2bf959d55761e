package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bookswap-api/internal/application/neighborhood"
	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// NeighborhoodHandler handles the neighborhoods reference table.
type NeighborhoodHandler struct {
	svc neighborhood.Service
}

func NewNeighborhoodHandler(svc neighborhood.Service) *NeighborhoodHandler {
	return &NeighborhoodHandler{svc: svc}
}

func (h *NeighborhoodHandler) List(w http.ResponseWriter, r *http.Request) {
	neighborhoods, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, neighborhoods)
}

func (h *NeighborhoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NeighborhoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.NeighborhoodInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *NeighborhoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.NeighborhoodInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete is a hard delete (no soft delete for reference data).
func (h *NeighborhoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "neighborhood deleted"})
}
