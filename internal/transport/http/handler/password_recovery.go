package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-api-pool/internal/application/auth"
	"github.com/go-api-pool/internal/pkg/validate"
	"github.com/go-api-pool/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// PasswordRecoveryHandler handles password recovery flow endpoints.
type PasswordRecoveryHandler struct {
	svc auth.Service
}

func NewPasswordRecoveryHandler(svc auth.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req auth.PasswordRecoveryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.svc.RequestPasswordRecovery(r.Context(), req); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent"})
	case "validate-code":
		var req auth.ValidateOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		result, err := h.svc.ValidateOTP(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: result.Bearer, RefreshToken: result.RefreshToken, Session: toSafeSession(result.Session), User: toSafeUser(result.Session.User)})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

// ChangePassword sets a new password for the caller. It sits behind auth so
// only a session opened by a validated OTP (or a normal login) can reach it.
func (h *PasswordRecoveryHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "new_password required")
		return
	}
	if err := h.svc.ChangePassword(r.Context(), claims.UserID, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}
