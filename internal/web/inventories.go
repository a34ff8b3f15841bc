package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
)

type inventoryForm struct {
	PageData
	Inventory *model.Inventory
	Input     model.InventoryInput
	Action    string
}

// InventoryIndex handles GET /Inventory.
func (s *Server) InventoryIndex(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	data := &struct {
		PageData
		Search      string
		Inventories []model.Inventory
	}{
		PageData: s.page(w, r, "Inventories"),
		Search:   search,
	}

	inventories, err := s.Inventories.List(r.Context(), search)
	if err != nil {
		slog.Error("failed to list inventories", "error", err)
		data.Error = "Inventories could not be loaded right now."
	}
	data.Inventories = inventories

	s.Templates.Render(w, http.StatusOK, "inventories.html", data)
}

// InventoryDetails handles GET /Inventory/Details/{id}.
func (s *Server) InventoryDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := s.Inventories.Details(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "inventory details")
		return
	}

	s.Templates.Render(w, http.StatusOK, "inventory_detail.html", &struct {
		PageData
		Inventory *model.Inventory
	}{
		PageData:  s.page(w, r, inv.Name),
		Inventory: inv,
	})
}

// InventoryCreatePage handles GET /Inventory/Create.
func (s *Server) InventoryCreatePage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "inventory_form.html", &inventoryForm{
		PageData: s.page(w, r, "Create inventory"),
		Action:   "/Inventory/Create",
	})
}

// InventoryCreateSubmit handles POST /Inventory/Create.
func (s *Server) InventoryCreateSubmit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	in := model.InventoryInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	inv, err := s.Inventories.Create(r.Context(), in, user.Actor())
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		data := &inventoryForm{PageData: s.page(w, r, "Create inventory"), Input: in, Action: "/Inventory/Create"}
		data.Errors = verrs
		s.Templates.Render(w, http.StatusUnprocessableEntity, "inventory_form.html", data)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "create inventory")
		return
	}

	slog.Info("inventory created", "user", user.Email, "inventory", inv.Name, "id", inv.ID)
	s.flashSuccess(w, fmt.Sprintf("Inventory '%s' created successfully.", inv.Name))
	http.Redirect(w, r, "/Inventory", http.StatusSeeOther)
}

// loadModifiableInventory loads an inventory the current user may change,
// rendering the appropriate error otherwise.
func (s *Server) loadModifiableInventory(w http.ResponseWriter, r *http.Request) (*model.Inventory, bool) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	inv, err := s.Inventories.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "load inventory")
		return nil, false
	}
	if !model.CanModify(inv.CreatedBy, currentActor(r.Context())) {
		s.renderError(w, r, http.StatusForbidden, "You can only change inventories you created.")
		return nil, false
	}
	return inv, true
}

// InventoryEditPage handles GET /Inventory/Edit/{id}.
func (s *Server) InventoryEditPage(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.loadModifiableInventory(w, r)
	if !ok {
		return
	}
	s.Templates.Render(w, http.StatusOK, "inventory_form.html", &inventoryForm{
		PageData:  s.page(w, r, "Edit inventory"),
		Inventory: inv,
		Input:     model.InventoryInput{Name: inv.Name, Description: inv.Description},
		Action:    fmt.Sprintf("/Inventory/Edit/%d", inv.ID),
	})
}

// InventoryEditSubmit handles POST /Inventory/Edit/{id}.
func (s *Server) InventoryEditSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	user := currentUser(r.Context())
	in := model.InventoryInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	inv, err := s.Inventories.Edit(r.Context(), id, in, user.Actor())
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		current, _ := s.Inventories.Get(r.Context(), id)
		data := &inventoryForm{
			PageData:  s.page(w, r, "Edit inventory"),
			Inventory: current,
			Input:     in,
			Action:    fmt.Sprintf("/Inventory/Edit/%d", id),
		}
		data.Errors = verrs
		s.Templates.Render(w, http.StatusUnprocessableEntity, "inventory_form.html", data)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "edit inventory")
		return
	}

	slog.Info("inventory updated", "user", user.Email, "inventory", inv.Name, "id", inv.ID)
	s.flashSuccess(w, fmt.Sprintf("Inventory '%s' updated successfully.", inv.Name))
	http.Redirect(w, r, fmt.Sprintf("/Inventory/Details/%d", inv.ID), http.StatusSeeOther)
}

// InventoryDeletePage handles GET /Inventory/Delete/{id}.
func (s *Server) InventoryDeletePage(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.loadModifiableInventory(w, r)
	if !ok {
		return
	}
	s.Templates.Render(w, http.StatusOK, "inventory_delete.html", &struct {
		PageData
		Inventory *model.Inventory
	}{
		PageData:  s.page(w, r, "Delete inventory"),
		Inventory: inv,
	})
}

// InventoryDeleteSubmit handles POST /Inventory/Delete/{id}.
func (s *Server) InventoryDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	user := currentUser(r.Context())

	inv, err := s.Inventories.Delete(r.Context(), id, user.Actor())
	if err != nil {
		s.handleError(w, r, err, "delete inventory")
		return
	}

	slog.Info("inventory deleted", "user", user.Email, "inventory", inv.Name, "id", inv.ID, "items", inv.ItemCount)
	s.flashSuccess(w, fmt.Sprintf("Inventory '%s' deleted successfully.", inv.Name))
	http.Redirect(w, r, "/Inventory", http.StatusSeeOther)
}
