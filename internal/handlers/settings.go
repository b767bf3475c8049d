package handlers

import (
	"net/http"
	"strconv"

	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
)

// DropdownOptions handles GET /api/dropdown-settings?category=&active_only=
// active_only defaults to true.
func (h *InventoryHandler) DropdownOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly := true
	if v := q.Get("active_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "active_only must be a boolean")
			return
		}
		activeOnly = b
	}

	options, err := h.svc.DropdownOptions(r.Context(), session.FromContext(r.Context()), q.Get("category"), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, options)
}

// CreateDropdownSetting handles POST /api/dropdown-settings
func (h *InventoryHandler) CreateDropdownSetting(w http.ResponseWriter, r *http.Request) {
	var setting models.DropdownSetting
	if !decodeJSON(w, r, &setting) {
		return
	}
	created, err := h.svc.CreateDropdownSetting(r.Context(), session.FromContext(r.Context()), setting)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

// UnreadCount handles GET /api/users/{id}/messages/unread-count
func (h *InventoryHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UnreadCount(r.Context(), session.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"count": n})
}

// SendMessage handles POST /api/messages
func (h *InventoryHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.svc.SendMessage(r.Context(), session.FromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, msg)
}

// MarkMessageRead handles POST /api/messages/{id}/read
func (h *InventoryHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkMessageRead(r.Context(), session.FromContext(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"read": true})
}
