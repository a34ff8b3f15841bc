package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
)

// InventoriesHandler handles inventory endpoints.
type InventoriesHandler struct {
	Inventories *service.Inventories
}

// List handles GET /api/inventories.
func (h *InventoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.Inventories.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		serviceError(w, err, "list inventories")
		return
	}
	if inventories == nil {
		inventories = []model.Inventory{}
	}
	jsonResponse(w, http.StatusOK, inventories)
}

// Create handles POST /api/inventories.
func (h *InventoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.InventoryInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.Inventories.Create(r.Context(), in, actor(r.Context()))
	if err != nil {
		serviceError(w, err, "create inventory")
		return
	}

	slog.Info("inventory created", "user", GetUser(r.Context()).Email, "inventory", inv.Name, "id", inv.ID)
	jsonResponse(w, http.StatusCreated, inv)
}

// Get handles GET /api/inventories/{id}.
func (h *InventoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.Inventories.Details(r.Context(), id)
	if err != nil {
		serviceError(w, err, "get inventory")
		return
	}
	jsonResponse(w, http.StatusOK, inv)
}

// Update handles PUT /api/inventories/{id}.
func (h *InventoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in model.InventoryInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.Inventories.Edit(r.Context(), id, in, actor(r.Context()))
	if err != nil {
		serviceError(w, err, "update inventory")
		return
	}

	slog.Info("inventory updated", "user", GetUser(r.Context()).Email, "inventory", inv.Name, "id", inv.ID)
	jsonResponse(w, http.StatusOK, inv)
}

// Delete handles DELETE /api/inventories/{id}. Items go with it.
func (h *InventoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.Inventories.Delete(r.Context(), id, actor(r.Context()))
	if err != nil {
		serviceError(w, err, "delete inventory")
		return
	}

	slog.Info("inventory deleted", "user", GetUser(r.Context()).Email, "inventory", inv.Name, "id", inv.ID, "items", inv.ItemCount)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "inventory deleted"})
}
