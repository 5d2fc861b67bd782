package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/go-api-pool/internal/application/device"
	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/transport/http/middleware"
)

// DeviceHandler handles device endpoints.
type DeviceHandler struct {
	svc device.Service
}

func NewDeviceHandler(svc device.Service) *DeviceHandler { return &DeviceHandler{svc: svc} }

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	devices, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// get loads the device and enforces that it belongs to the caller unless the
// caller is an admin.
func (h *DeviceHandler) get(r *http.Request) (*domain.Device, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if d.UserID != claims.UserID && claims.RoleID != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return d, nil
}

func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.get(r)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	d, err := h.get(r)
	if err != nil {
		httpError(w, err)
		return
	}
	var req domain.UpdateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), d.DeviceID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	d, err := h.get(r)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), d.DeviceID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "device deleted"})
}

func (h *DeviceHandler) CheckVersion(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		DeviceVersion float64 `json:"device_version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	upToDate, err := h.svc.CheckVersion(r.Context(), claims.SessionID, body.DeviceVersion)
	if err != nil {
		httpError(w, err)
		return
	}
	if !upToDate {
		writeJSON(w, http.StatusConflict, MessageEnvelope{Message: "update required"})
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "up to date"})
}
