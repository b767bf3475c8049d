package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ukydev/vehicle-inventory/internal/inventory"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
)

func markerValue(r *http.Request) string {
	c, err := r.Cookie(session.MarkerCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *InventoryHandler) setMarker(w http.ResponseWriter, r *http.Request, value string) {
	c := &http.Cookie{
		Name:     session.MarkerCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(h.markerTTL / time.Second)
	}
	http.SetCookie(w, c)
}

// CheckImpersonation handles GET /api/users/check-impersonation. It always
// answers 200 with the bare status object.
func (h *InventoryHandler) CheckImpersonation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CheckImpersonation(r.Context(), markerValue(r)))
}

// StartImpersonation handles POST /api/users/{id}/impersonate
func (h *InventoryHandler) StartImpersonation(w http.ResponseWriter, r *http.Request) {
	sw, err := h.svc.StartImpersonation(r.Context(), session.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.setMarker(w, r, sw.Marker)
	writeData(w, http.StatusOK, models.LoginResponse{Token: sw.Token, User: sw.User})
}

// StopImpersonation handles POST /api/users/stop-impersonation
func (h *InventoryHandler) StopImpersonation(w http.ResponseWriter, r *http.Request) {
	sw, err := h.svc.StopImpersonation(r.Context(), session.FromContext(r.Context()), markerValue(r))
	if err != nil {
		if errors.Is(err, inventory.ErrUnauthorized) || errors.Is(err, inventory.ErrForbidden) {
			// A stale or foreign marker is useless; drop it.
			h.setMarker(w, r, "")
		}
		writeServiceError(w, err)
		return
	}
	h.setMarker(w, r, "")
	writeData(w, http.StatusOK, models.LoginResponse{Token: sw.Token, User: sw.User})
}
