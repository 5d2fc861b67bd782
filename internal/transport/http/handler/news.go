package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/go-api-pool/internal/application/news"
	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/validate"
	"github.com/go-api-pool/internal/transport/http/middleware"
)

// NewsHandler handles news endpoints. Create/Update/Delete are routed
// admin-only; ListActive and Get are open to any authenticated user.
type NewsHandler struct {
	svc news.Service
}

func NewNewsHandler(svc news.Service) *NewsHandler { return &NewsHandler{svc: svc} }

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *NewsHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListActive(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListPending returns news scheduled for the future. Admin-only: unpublished
// items are editorial state.
func (h *NewsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPending(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "news deleted"})
}
