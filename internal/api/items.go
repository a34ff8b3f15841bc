package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Items *service.Items
}

type itemPageResponse struct {
	Items      []model.Item     `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Pages      int              `json:"pages"`
	Inventory  *model.Inventory `json:"inventory,omitempty"`
	Categories []string         `json:"categories"`
}

// List handles GET /api/items and GET /api/inventories/{id}/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var inventoryID int64
	if routeHasParam(r, "id") {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		inventoryID = id
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	result, err := h.Items.List(r.Context(), service.ItemFilter{
		InventoryID: inventoryID,
		Search:      q.Get("search"),
		Category:    q.Get("category"),
		Stock:       model.ParseStockLevel(q.Get("stock")),
		Sort:        model.ParseItemSort(q.Get("sort")),
		Page:        page,
		PageSize:    min(pageSize, 100),
	})
	if err != nil {
		serviceError(w, err, "list items")
		return
	}

	categories, err := h.Items.Categories(r.Context(), inventoryID)
	if err != nil {
		serviceError(w, err, "list categories")
		return
	}

	resp := itemPageResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		Pages:      result.Pages(),
		Inventory:  result.Inventory,
		Categories: categories,
	}
	if resp.Items == nil {
		resp.Items = []model.Item{}
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/inventories/{id}/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	inventoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in model.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Items.Create(r.Context(), inventoryID, in, actor(r.Context()))
	if err != nil {
		serviceError(w, err, "create item")
		return
	}

	slog.Info("item created", "user", GetUser(r.Context()).Email, "item", item.Name, "code", item.Code, "inventory", item.InventoryID)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.Items.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in model.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Items.Edit(r.Context(), id, in, actor(r.Context()))
	if err != nil {
		serviceError(w, err, "update item")
		return
	}

	slog.Info("item updated", "user", GetUser(r.Context()).Email, "item", item.Name, "id", item.ID)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.Items.Delete(r.Context(), id, actor(r.Context()))
	if err != nil {
		serviceError(w, err, "delete item")
		return
	}

	slog.Info("item deleted", "user", GetUser(r.Context()).Email, "item", item.Name, "id", item.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
