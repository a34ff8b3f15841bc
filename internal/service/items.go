package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/imaging"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// DefaultPageSize is the number of items per listing page.
const DefaultPageSize = 20

// ItemFilter narrows and orders an item listing.
type ItemFilter struct {
	InventoryID int64 // 0 lists items across all inventories
	Search      string
	Category    string
	Stock       model.StockLevel
	Sort        model.ItemSort
	Page        int // 1-based
	PageSize    int
}

// ItemPage is one page of an item listing.
type ItemPage struct {
	Items     []model.Item
	Total     int
	Page      int
	PageSize  int
	Inventory *model.Inventory // set for a listing scoped to one inventory
}

// Pages returns the number of pages, at least 1.
func (p *ItemPage) Pages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasPrev reports whether there is a page before this one.
func (p *ItemPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether there is a page after this one.
func (p *ItemPage) HasNext() bool { return p.Page < p.Pages() }

// Items lists, creates, edits and deletes items and their photos.
type Items struct {
	db       *sqlx.DB
	now      func() time.Time
	pageSize int
}

// NewItems returns an Items backed by db. pageSize <= 0 selects
// DefaultPageSize.
func NewItems(db *sqlx.DB, pageSize int) *Items {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Items{db: db, now: time.Now, pageSize: pageSize}
}

// List returns one page of items matching the filter. Listing the items of
// a missing inventory returns ErrNotFound.
func (s *Items) List(ctx context.Context, f ItemFilter) (*ItemPage, error) {
	page := &ItemPage{Page: max(f.Page, 1), PageSize: f.PageSize}
	if page.PageSize <= 0 {
		page.PageSize = s.pageSize
	}

	if f.InventoryID != 0 {
		inv, err := store.GetInventory(ctx, s.db, f.InventoryID)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, ErrNotFound
		}
		page.Inventory = inv
	}

	items, total, err := store.ListItems(ctx, s.db, store.ItemQuery{
		InventoryID: f.InventoryID,
		Search:      f.Search,
		Category:    f.Category,
		Stock:       f.Stock,
		Sort:        f.Sort,
		Limit:       page.PageSize,
		Offset:      (page.Page - 1) * page.PageSize,
	})
	if err != nil {
		return nil, err
	}
	page.Items = items
	page.Total = total
	return page, nil
}

// Categories returns the distinct categories in use, optionally within one
// inventory.
func (s *Items) Categories(ctx context.Context, inventoryID int64) ([]string, error) {
	return store.ListCategories(ctx, s.db, inventoryID)
}

// Get returns an item.
func (s *Items) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// Create adds an item to an inventory. Any signed-in user may add items to
// any inventory; the item is owned by its creator.
func (s *Items) Create(ctx context.Context, inventoryID int64, in model.ItemInput, actor model.Actor) (*model.Item, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	exists, err := store.InventoryExists(ctx, s.db, inventoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, s.db, store.NewItem{
		InventoryID: inventoryID,
		Input:       in,
		CreatedBy:   model.CreatedBy(actor.UserID),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// Edit changes an item's editable fields. Inventory, display code, creator
// and creation time are kept.
func (s *Items) Edit(ctx context.Context, id int64, in model.ItemInput, actor model.Actor) (*model.Item, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, model.CanModify(item.CreatedBy, actor)); err != nil {
		return nil, err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n, err := store.UpdateItem(ctx, s.db, id, in)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.vanishedOrConflict(ctx, id)
	}
	return s.Get(ctx, id)
}

// vanishedOrConflict explains an update that changed no rows.
func (s *Items) vanishedOrConflict(ctx context.Context, id int64) error {
	current, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}
	return ErrConflict
}

// Delete removes an item and returns it so callers can report its name.
func (s *Items) Delete(ctx context.Context, id int64, actor model.Actor) (*model.Item, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, model.CanModify(item.CreatedBy, actor)); err != nil {
		return nil, err
	}
	return deleteItem(ctx, s.db, item)
}

func deleteItem(ctx context.Context, db *sqlx.DB, item *model.Item) (*model.Item, error) {
	ok, err := store.DeleteItem(ctx, db, item.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

// SetPhoto processes an uploaded image and stores it as the item's photo.
// Unreadable or oversized uploads are reported as validation errors.
func (s *Items) SetPhoto(ctx context.Context, id int64, upload io.Reader, actor model.Actor) (*model.Item, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, model.CanModify(item.CreatedBy, actor)); err != nil {
		return nil, err
	}

	photo, err := imaging.ProcessPhoto(upload)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			return nil, model.ValidationErrors{"Photo": "Photo must be smaller than 5 MB"}
		default:
			return nil, model.ValidationErrors{"Photo": "Photo must be a JPEG, PNG or WebP image"}
		}
	}

	if err := store.SetItemPhoto(ctx, s.db, id, photo.Data, photo.MIME); err != nil {
		return nil, err
	}
	item.HasPhoto = true
	return item, nil
}

// Photo returns an item's photo and its MIME type.
func (s *Items) Photo(ctx context.Context, id int64) ([]byte, string, error) {
	data, mime, err := store.GetItemPhoto(ctx, s.db, id)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", ErrNotFound
	}
	return data, mime, nil
}
