package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/go-api-pool/internal/application/user"
	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/validate"
	"github.com/go-api-pool/internal/transport/http/middleware"
)

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

// ChangePasswordRequest is the body for the password change endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// Register creates the account and opens a session in the same call, so the
// client lands authenticated without a follow-up login.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.RegisterWithSession(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		Bearer:       result.Bearer,
		RefreshToken: result.RefreshToken,
		Session:      toSafeSession(result.Session),
		User:         toSafeUser(result.Session.User),
	})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	users, next, err := h.svc.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, err)
		return
	}
	safe := make([]*SafeUser, len(users))
	for i := range users {
		safe[i] = toSafeUser(&users[i])
	}
	writeJSON(w, http.StatusOK, UsersPageEnvelope{Data: safe, NextCursor: next})
}

// Get returns the full profile to the owner and admins, and a trimmed public
// view to everyone else.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	u, err := h.svc.Get(r.Context(), targetID)
	if err != nil {
		httpError(w, err)
		return
	}
	if claims.UserID != targetID && claims.RoleID != domain.RoleAdmin {
		writeJSON(w, http.StatusOK, toPublicUser(u))
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.UserID != targetID && claims.RoleID != domain.RoleAdmin {
		writeError(w, http.StatusUnauthorized, "cannot update another user")
		return
	}
	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Role and enable are admin-only fields even on your own account.
	if claims.RoleID != domain.RoleAdmin && (req.Role != nil || req.Enable != nil) {
		writeError(w, http.StatusForbidden, "role and enable changes require admin")
		return
	}
	u, err := h.svc.Update(r.Context(), targetID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.UserID != targetID && claims.RoleID != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot delete another user")
		return
	}
	if err := h.svc.Delete(r.Context(), targetID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}

// ChangePassword changes the caller's own password after verifying the
// current one.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}
