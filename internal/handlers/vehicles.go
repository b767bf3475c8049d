package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/vehicle-inventory/internal/auth"
	"github.com/ukydev/vehicle-inventory/internal/inventory"
	"github.com/ukydev/vehicle-inventory/internal/session"
)

// InventoryHandler exposes the inventory boundary over HTTP
type InventoryHandler struct {
	svc           *inventory.Service
	markerTTL     time.Duration
	secureCookies bool
}

// NewInventoryHandler creates a new inventory handler. markerTTL bounds the
// lifetime of the impersonation cookie; secureCookies forces its Secure flag.
func NewInventoryHandler(svc *inventory.Service, markerTTL time.Duration, secureCookies bool) *InventoryHandler {
	if markerTTL <= 0 {
		markerTTL = auth.DefaultTokenExpiry
	}
	return &InventoryHandler{svc: svc, markerTTL: markerTTL, secureCookies: secureCookies}
}

// ListVehicles handles GET /api/vehicles?status=
func (h *InventoryHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.svc.ListVehicles(r.Context(), session.FromContext(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, vehicles)
}

// GetVehicle handles GET /api/vehicles/{id}
func (h *InventoryHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.svc.GetVehicle(r.Context(), session.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, vehicle)
}

// CreateVehicle handles POST /api/vehicles
func (h *InventoryHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	vehicle, err := h.svc.CreateVehicle(r.Context(), session.FromContext(r.Context()), fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, vehicle)
}

// UpdateVehicle handles PUT /api/vehicles/{id}
func (h *InventoryHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	vehicle, err := h.svc.UpdateVehicle(r.Context(), session.FromContext(r.Context()), r.PathValue("id"), fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, vehicle)
}

// ArbHistory handles GET /api/vehicles/{id}/arb/history
func (h *InventoryHandler) ArbHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ArbHistory(r.Context(), session.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

// CreateArbRecord handles POST /api/vehicles/{id}/arb
func (h *InventoryHandler) CreateArbRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	record, err := h.svc.CreateArbRecord(r.Context(), session.FromContext(r.Context()), r.PathValue("id"), req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, record)
}
