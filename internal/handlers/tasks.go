package handlers

import (
	"net/http"

	"github.com/ukydev/vehicle-inventory/internal/session"
)

// ListTasks handles GET /api/tasks. Each query parameter is a filter field.
func (h *InventoryHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filters := make(map[string]any)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			filters[key] = vals[0]
		}
	}
	tasks, err := h.svc.ListTasks(r.Context(), session.FromContext(r.Context()), filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks
func (h *InventoryHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	task, err := h.svc.CreateTask(r.Context(), session.FromContext(r.Context()), fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{id}
func (h *InventoryHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), session.FromContext(r.Context()), r.PathValue("id"), fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, task)
}
