package handlers

import (
	"encoding/json"
	"net/http"

	"teamboard/internal/middleware"
	"teamboard/internal/models"
	"teamboard/internal/services"
)

// AdminHandlers is the admin-only user directory; every route is behind
// middleware.RequireAdmin.
type AdminHandlers struct {
	userService *services.UserService
}

func NewAdminHandlers(userService *services.UserService) *AdminHandlers {
	return &AdminHandlers{userService: userService}
}

func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandlers) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFrom(r.Context())

	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.userService.SetActive(r.Context(), userID, req.IsActive, actor); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
