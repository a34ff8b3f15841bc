package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
)

// AdminHandler handles administrator endpoints.
type AdminHandler struct {
	Admin *service.Admin
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admin.Dashboard(r.Context(), actor(r.Context()))
	if err != nil {
		serviceError(w, err, "dashboard")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.Admin.Users(r.Context(), actor(r.Context()))
	if err != nil {
		serviceError(w, err, "list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// ToggleAdmin handles POST /api/admin/users/{id}/toggle-admin.
func (h *AdminHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.Admin.ToggleAdmin(r.Context(), id, actor(r.Context()))
	if err != nil {
		serviceError(w, err, "toggle admin")
		return
	}

	slog.Info("admin role changed", "user", GetUser(r.Context()).Email, "target", user.Email, "is_admin", user.IsAdmin)
	jsonResponse(w, http.StatusOK, user)
}
