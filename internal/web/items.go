package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
)

type itemListPage struct {
	PageData
	Page       *service.ItemPage
	Categories []string
	Search     string
	Category   string
	Stock      string
	Sort       string
	PrevURL    string
	NextURL    string
	BaseURL    string
}

type itemForm struct {
	PageData
	Item        *model.Item
	Inventory   *model.Inventory
	Inventories []model.Inventory
	InventoryID int64
	Form        itemFormValues
	Action      string
}

// itemFormValues echoes submitted values back into a re-rendered form.
type itemFormValues struct {
	Name        string
	Description string
	Quantity    string
	Price       string
	Category    string
	SKU         string
}

func formValuesFromItem(item *model.Item) itemFormValues {
	return itemFormValues{
		Name:        item.Name,
		Description: item.Description,
		Quantity:    strconv.Itoa(item.Quantity),
		Price:       item.Price.String(),
		Category:    item.Category,
		SKU:         item.SKU,
	}
}

// parseItemForm reads an item form. Unparseable numbers become field errors.
func parseItemForm(r *http.Request) (model.ItemInput, itemFormValues, model.ValidationErrors) {
	values := itemFormValues{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Quantity:    strings.TrimSpace(r.FormValue("quantity")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Category:    r.FormValue("category"),
		SKU:         r.FormValue("sku"),
	}
	in := model.ItemInput{
		Name:        values.Name,
		Description: values.Description,
		Category:    values.Category,
		SKU:         values.SKU,
	}

	var errs model.ValidationErrors
	if values.Quantity != "" {
		q, err := strconv.Atoi(values.Quantity)
		if err != nil {
			errs = model.ValidationErrors{"Quantity": "Quantity must be a whole number"}
		}
		in.Quantity = q
	}
	if values.Price != "" {
		p, err := model.ParseCents(values.Price)
		if err != nil {
			if errs == nil {
				errs = model.ValidationErrors{}
			}
			errs["Price"] = "Price must be a number with at most two decimals"
		}
		in.Price = p
	}
	return in, values, errs
}

// ItemIndex handles GET /Item.
func (s *Server) ItemIndex(w http.ResponseWriter, r *http.Request) {
	s.renderItemList(w, r, 0)
}

// ItemsByInventory handles GET /Item/Inventory/{inventoryId}.
func (s *Server) ItemsByInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "inventoryId")
	if !ok {
		return
	}
	s.renderItemList(w, r, id)
}

func (s *Server) renderItemList(w http.ResponseWriter, r *http.Request, inventoryID int64) {
	q := r.URL.Query()
	pageNum, _ := strconv.Atoi(q.Get("page"))
	filter := service.ItemFilter{
		InventoryID: inventoryID,
		Search:      q.Get("search"),
		Category:    q.Get("category"),
		Stock:       model.ParseStockLevel(q.Get("stock")),
		Sort:        model.ParseItemSort(q.Get("sort")),
		Page:        pageNum,
	}

	base := "/Item"
	if inventoryID != 0 {
		base = fmt.Sprintf("/Item/Inventory/%d", inventoryID)
	}

	data := &itemListPage{
		PageData: s.page(w, r, "Items"),
		Search:   filter.Search,
		Category: filter.Category,
		Stock:    string(filter.Stock),
		Sort:     string(filter.Sort),
		BaseURL:  base,
	}

	page, err := s.Items.List(r.Context(), filter)
	if errors.Is(err, service.ErrNotFound) {
		s.handleError(w, r, err, "list items")
		return
	}
	if err != nil {
		slog.Error("failed to list items", "error", err)
		data.Error = "Items could not be loaded right now."
		page = &service.ItemPage{Page: 1}
	}
	data.Page = page
	if page.Inventory != nil {
		data.Title = "Items in " + page.Inventory.Name
	}

	categories, err := s.Items.Categories(r.Context(), inventoryID)
	if err != nil {
		slog.Error("failed to list categories", "error", err)
	}
	data.Categories = categories

	if page.HasPrev() {
		data.PrevURL = pageURL(base, q, page.Page-1)
	}
	if page.HasNext() {
		data.NextURL = pageURL(base, q, page.Page+1)
	}

	s.Templates.Render(w, http.StatusOK, "items.html", data)
}

func pageURL(base string, q url.Values, page int) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	next.Set("page", strconv.Itoa(page))
	return base + "?" + next.Encode()
}

// ItemCreatePage handles GET /Item/Create?inventoryId=.
func (s *Server) ItemCreatePage(w http.ResponseWriter, r *http.Request) {
	data := &itemForm{
		PageData: s.page(w, r, "Add item"),
		Action:   "/Item/Create",
		Form:     itemFormValues{Quantity: "0", Price: "0.00"},
	}

	if raw := r.URL.Query().Get("inventoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.renderError(w, r, http.StatusNotFound, "Inventory not found.")
			return
		}
		inv, err := s.Inventories.Get(r.Context(), id)
		if err != nil {
			s.handleError(w, r, err, "item create page")
			return
		}
		data.Inventory = inv
		data.InventoryID = inv.ID
	} else {
		inventories, err := s.Inventories.List(r.Context(), "")
		if err != nil {
			s.handleError(w, r, err, "item create page")
			return
		}
		data.Inventories = inventories
	}

	s.Templates.Render(w, http.StatusOK, "item_form.html", data)
}

// ItemCreateSubmit handles POST /Item/Create.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	raw := r.FormValue("inventory_id")
	if raw == "" {
		raw = r.URL.Query().Get("inventoryId")
	}
	inventoryID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Inventory not found.")
		return
	}

	in, values, formErrs := parseItemForm(r)
	var item *model.Item
	if formErrs == nil {
		item, err = s.Items.Create(r.Context(), inventoryID, in, user.Actor())
	}

	var verrs model.ValidationErrors
	if formErrs != nil || errors.As(err, &verrs) {
		inv, ierr := s.Inventories.Get(r.Context(), inventoryID)
		if ierr != nil {
			s.handleError(w, r, ierr, "create item")
			return
		}
		data := &itemForm{
			PageData:    s.page(w, r, "Add item"),
			Inventory:   inv,
			InventoryID: inventoryID,
			Form:        values,
			Action:      "/Item/Create",
		}
		data.Errors = mergeErrors(formErrs, verrs)
		s.Templates.Render(w, http.StatusUnprocessableEntity, "item_form.html", data)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "create item")
		return
	}

	slog.Info("item created", "user", user.Email, "item", item.Name, "code", item.Code, "inventory", item.InventoryID)
	s.flashSuccess(w, fmt.Sprintf("Item '%s' created successfully.", item.Name))
	http.Redirect(w, r, fmt.Sprintf("/Item/Inventory/%d", item.InventoryID), http.StatusSeeOther)
}

func mergeErrors(a, b model.ValidationErrors) model.ValidationErrors {
	out := model.ValidationErrors{}
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (s *Server) loadModifiableItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	item, err := s.Items.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "load item")
		return nil, false
	}
	if !model.CanModify(item.CreatedBy, currentActor(r.Context())) {
		s.renderError(w, r, http.StatusForbidden, "You can only change items you created.")
		return nil, false
	}
	return item, true
}

// ItemEditPage handles GET /Item/Edit/{id}.
func (s *Server) ItemEditPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadModifiableItem(w, r)
	if !ok {
		return
	}
	s.Templates.Render(w, http.StatusOK, "item_form.html", &itemForm{
		PageData:    s.page(w, r, "Edit item"),
		Item:        item,
		InventoryID: item.InventoryID,
		Form:        formValuesFromItem(item),
		Action:      fmt.Sprintf("/Item/Edit/%d", item.ID),
	})
}

// ItemEditSubmit handles POST /Item/Edit/{id}.
func (s *Server) ItemEditSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	user := currentUser(r.Context())

	in, values, formErrs := parseItemForm(r)
	var item *model.Item
	var err error
	if formErrs == nil {
		item, err = s.Items.Edit(r.Context(), id, in, user.Actor())
	} else {
		// Still enforce existence and ownership before echoing the form.
		if _, ok := s.loadModifiableItem(w, r); !ok {
			return
		}
	}

	var verrs model.ValidationErrors
	if formErrs != nil || errors.As(err, &verrs) {
		current, gerr := s.Items.Get(r.Context(), id)
		if gerr != nil {
			s.handleError(w, r, gerr, "edit item")
			return
		}
		data := &itemForm{
			PageData:    s.page(w, r, "Edit item"),
			Item:        current,
			InventoryID: current.InventoryID,
			Form:        values,
			Action:      fmt.Sprintf("/Item/Edit/%d", id),
		}
		data.Errors = mergeErrors(formErrs, verrs)
		s.Templates.Render(w, http.StatusUnprocessableEntity, "item_form.html", data)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "edit item")
		return
	}

	slog.Info("item updated", "user", user.Email, "item", item.Name, "id", item.ID)
	s.flashSuccess(w, fmt.Sprintf("Item '%s' updated successfully.", item.Name))
	http.Redirect(w, r, fmt.Sprintf("/Item/Inventory/%d", item.InventoryID), http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /Item/Delete/{id}. A missing item is
// reported as a notice rather than an error page.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	user := currentUser(r.Context())

	item, err := s.Items.Delete(r.Context(), id, user.Actor())
	if errors.Is(err, service.ErrNotFound) {
		s.flashError(w, "Item not found.")
		http.Redirect(w, r, "/Item", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "delete item")
		return
	}

	slog.Info("item deleted", "user", user.Email, "item", item.Name, "id", item.ID)
	s.flashSuccess(w, fmt.Sprintf("Item '%s' deleted successfully.", item.Name))
	http.Redirect(w, r, fmt.Sprintf("/Item/Inventory/%d", item.InventoryID), http.StatusSeeOther)
}

// ItemPhoto handles GET /Item/Photo/{id}.
func (s *Server) ItemPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	data, mime, err := s.Items.Photo(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get item photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

// ItemPhotoSubmit handles POST /Item/Photo/{id}.
func (s *Server) ItemPhotoSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	user := currentUser(r.Context())

	file, _, err := r.FormFile("photo")
	if err != nil {
		s.flashError(w, "Choose a photo to upload.")
		http.Redirect(w, r, fmt.Sprintf("/Item/Edit/%d", id), http.StatusSeeOther)
		return
	}
	defer file.Close()

	item, err := s.Items.SetPhoto(r.Context(), id, file, user.Actor())
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		s.flashError(w, verrs["Photo"])
		http.Redirect(w, r, fmt.Sprintf("/Item/Edit/%d", id), http.StatusSeeOther)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "upload item photo")
		return
	}

	slog.Info("item photo updated", "user", user.Email, "item", item.Name, "id", item.ID)
	s.flashSuccess(w, fmt.Sprintf("Photo for '%s' updated.", item.Name))
	http.Redirect(w, r, fmt.Sprintf("/Item/Edit/%d", id), http.StatusSeeOther)
}
