package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-api-pool/internal/application/role"
	"github.com/go-api-pool/internal/domain"
)

// RoleHandler handles role CRUD endpoints (all admin-only).
type RoleHandler struct {
	svc role.Service
}

func NewRoleHandler(svc role.Service) *RoleHandler { return &RoleHandler{svc: svc} }

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.RoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	rl, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rl)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.RoleInput
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

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "role deleted"})
}

