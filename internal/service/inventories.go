package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// Inventories lists, creates, edits and deletes inventories.
type Inventories struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewInventories returns an Inventories backed by db.
func NewInventories(db *sqlx.DB) *Inventories {
	return &Inventories{db: db, now: time.Now}
}

// List returns all inventories with their totals. A non-empty search keeps
// only those whose name or description contains it, ignoring case.
func (s *Inventories) List(ctx context.Context, search string) ([]model.Inventory, error) {
	return store.ListInventories(ctx, s.db, search)
}

// Details returns an inventory together with its items.
func (s *Inventories) Details(ctx context.Context, id int64) (*model.Inventory, error) {
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, _, err := store.ListItems(ctx, s.db, store.ItemQuery{InventoryID: id})
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// Get returns an inventory without its items.
func (s *Inventories) Get(ctx context.Context, id int64) (*model.Inventory, error) {
	return s.get(ctx, id)
}

func (s *Inventories) get(ctx context.Context, id int64) (*model.Inventory, error) {
	inv, err := store.GetInventory(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	return inv, nil
}

// Create validates the input and stores a new inventory owned by actor.
func (s *Inventories) Create(ctx context.Context, in model.InventoryInput, actor model.Actor) (*model.Inventory, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return store.CreateInventory(ctx, s.db, in.Name, in.Description, model.CreatedBy(actor.UserID), s.now())
}

// Edit changes an inventory's name and description. The creator and creation
// time are kept.
func (s *Inventories) Edit(ctx context.Context, id int64, in model.InventoryInput, actor model.Actor) (*model.Inventory, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, model.CanModify(inv.CreatedBy, actor)); err != nil {
		return nil, err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n, err := store.UpdateInventory(ctx, s.db, id, in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.vanishedOrConflict(ctx, id)
	}
	return s.get(ctx, id)
}

// vanishedOrConflict explains an update that changed no rows.
func (s *Inventories) vanishedOrConflict(ctx context.Context, id int64) error {
	exists, err := store.InventoryExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

// Delete removes an inventory and all of its items. It returns the deleted
// inventory so callers can report it.
func (s *Inventories) Delete(ctx context.Context, id int64, actor model.Actor) (*model.Inventory, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, model.CanModify(inv.CreatedBy, actor)); err != nil {
		return nil, err
	}
	return deleteInventory(ctx, s.db, inv)
}

func deleteInventory(ctx context.Context, db *sqlx.DB, inv *model.Inventory) (*model.Inventory, error) {
	ok, err := store.DeleteInventory(ctx, db, inv.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return inv, nil
}
