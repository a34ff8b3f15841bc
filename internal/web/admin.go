package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
)

// AdminDashboard handles GET /Admin.
func (s *Server) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Admin.Dashboard(r.Context(), currentActor(r.Context()))
	if err != nil {
		s.handleError(w, r, err, "admin dashboard")
		return
	}
	s.Templates.Render(w, http.StatusOK, "admin_dashboard.html", &struct {
		PageData
		Stats *model.DashboardStats
	}{
		PageData: s.page(w, r, "Administration"),
		Stats:    stats,
	})
}

// AdminUsers handles GET /Admin/Users.
func (s *Server) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Admin.Users(r.Context(), currentActor(r.Context()))
	if err != nil {
		s.handleError(w, r, err, "admin users")
		return
	}
	s.Templates.Render(w, http.StatusOK, "admin_users.html", &struct {
		PageData
		Users []model.User
	}{
		PageData: s.page(w, r, "Users"),
		Users:    users,
	})
}

// AdminToggleAdmin handles POST /Admin/Users/{id}/ToggleAdmin.
func (s *Server) AdminToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	actor := currentUser(r.Context())

	u, err := s.Admin.ToggleAdmin(r.Context(), id, actor.Actor())
	switch {
	case errors.Is(err, service.ErrSelfToggle):
		s.flashError(w, "You cannot change your own admin status.")
	case errors.Is(err, service.ErrNotFound):
		s.flashError(w, "User not found.")
	case err != nil:
		s.handleError(w, r, err, "toggle admin")
		return
	default:
		verb := "revoked from"
		if u.IsAdmin {
			verb = "granted to"
		}
		slog.Info("admin role changed", "user", actor.Email, "target", u.Email, "is_admin", u.IsAdmin)
		s.flashSuccess(w, fmt.Sprintf("Admin role %s %s.", verb, u.FullName()))
	}
	http.Redirect(w, r, "/Admin/Users", http.StatusSeeOther)
}

// AdminInventories handles GET /Admin/Inventories.
func (s *Server) AdminInventories(w http.ResponseWriter, r *http.Request) {
	inventories, err := s.Admin.Inventories(r.Context(), currentActor(r.Context()))
	if err != nil {
		s.handleError(w, r, err, "admin inventories")
		return
	}
	s.Templates.Render(w, http.StatusOK, "admin_inventories.html", &struct {
		PageData
		Inventories []model.Inventory
	}{
		PageData:    s.page(w, r, "All inventories"),
		Inventories: inventories,
	})
}

// AdminDeleteInventory handles POST /Admin/Inventories/{id}/Delete.
func (s *Server) AdminDeleteInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	actor := currentUser(r.Context())

	inv, err := s.Admin.DeleteInventory(r.Context(), id, actor.Actor())
	switch {
	case errors.Is(err, service.ErrNotFound):
		s.flashError(w, "Inventory not found.")
	case err != nil:
		s.handleError(w, r, err, "admin delete inventory")
		return
	default:
		slog.Info("inventory deleted by admin", "user", actor.Email, "inventory", inv.Name, "id", inv.ID)
		s.flashSuccess(w, fmt.Sprintf("Inventory '%s' deleted successfully.", inv.Name))
	}
	http.Redirect(w, r, "/Admin/Inventories", http.StatusSeeOther)
}

// AdminItems handles GET /Admin/Items.
func (s *Server) AdminItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.Admin.Items(r.Context(), currentActor(r.Context()))
	if err != nil {
		s.handleError(w, r, err, "admin items")
		return
	}
	s.Templates.Render(w, http.StatusOK, "admin_items.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: s.page(w, r, "All items"),
		Items:    items,
	})
}

// AdminDeleteItem handles POST /Admin/Items/{id}/Delete.
func (s *Server) AdminDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	actor := currentUser(r.Context())

	item, err := s.Admin.DeleteItem(r.Context(), id, actor.Actor())
	switch {
	case errors.Is(err, service.ErrNotFound):
		s.flashError(w, "Item not found.")
	case err != nil:
		s.handleError(w, r, err, "admin delete item")
		return
	default:
		slog.Info("item deleted by admin", "user", actor.Email, "item", item.Name, "id", item.ID)
		s.flashSuccess(w, fmt.Sprintf("Item '%s' deleted successfully.", item.Name))
	}
	http.Redirect(w, r, "/Admin/Items", http.StatusSeeOther)
}

type contentPage struct {
	PageData
	Entries []model.SiteContent
	Input   model.SiteContentInput
}

// AdminContent handles GET /Admin/Content.
func (s *Server) AdminContent(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Admin.SiteContent(r.Context(), currentActor(r.Context()))
	if err != nil {
		s.handleError(w, r, err, "admin content")
		return
	}
	data := &contentPage{PageData: s.page(w, r, "Site content"), Entries: entries}
	if key := r.URL.Query().Get("key"); key != "" {
		data.Input.Key = key
		for _, e := range entries {
			if e.Key == key {
				data.Input = model.SiteContentInput{Key: e.Key, Value: e.Value, Description: e.Description}
			}
		}
	}
	s.Templates.Render(w, http.StatusOK, "admin_content.html", data)
}

// AdminContentSubmit handles POST /Admin/Content.
func (s *Server) AdminContentSubmit(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r.Context())
	in := model.SiteContentInput{
		Key:         r.FormValue("key"),
		Value:       r.FormValue("value"),
		Description: r.FormValue("description"),
	}

	entry, err := s.Admin.SetSiteContent(r.Context(), in, actor.Actor())
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		entries, lerr := s.Admin.SiteContent(r.Context(), actor.Actor())
		if lerr != nil {
			s.handleError(w, r, lerr, "admin content")
			return
		}
		data := &contentPage{PageData: s.page(w, r, "Site content"), Entries: entries, Input: in}
		data.Errors = verrs
		s.Templates.Render(w, http.StatusUnprocessableEntity, "admin_content.html", data)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "set site content")
		return
	}

	slog.Info("site content updated", "user", actor.Email, "key", entry.Key)
	s.flashSuccess(w, fmt.Sprintf("Content '%s' saved.", entry.Key))
	http.Redirect(w, r, "/Admin/Content", http.StatusSeeOther)
}
