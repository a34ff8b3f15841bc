package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// RecentLimit is how many recent records the dashboard shows per kind.
const RecentLimit = 5

// Admin holds operations reserved for administrators. Every method checks
// the actor before doing anything.
type Admin struct {
	db *sqlx.DB
}

// NewAdmin returns an Admin backed by db.
func NewAdmin(db *sqlx.DB) *Admin {
	return &Admin{db: db}
}

func requireAdmin(actor model.Actor) error {
	return authorize(actor, actor.IsAdmin)
}

// ToggleAdmin flips a user's admin flag. Admins cannot change their own.
func (s *Admin) ToggleAdmin(ctx context.Context, userID int64, actor model.Actor) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, ErrSelfToggle
	}

	u, err := store.GetUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}

	ok, err := store.SetUserAdmin(ctx, s.db, userID, !u.IsAdmin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	u.IsAdmin = !u.IsAdmin
	return u, nil
}

// Users lists every user ordered by last name, then first name.
func (s *Admin) Users(ctx context.Context, actor model.Actor) ([]model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return store.ListUsers(ctx, s.db)
}

// Inventories lists every inventory ordered by name.
func (s *Admin) Inventories(ctx context.Context, actor model.Actor) ([]model.Inventory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return store.ListInventories(ctx, s.db, "")
}

// Items lists every item ordered by name.
func (s *Admin) Items(ctx context.Context, actor model.Actor) ([]model.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	items, _, err := store.ListItems(ctx, s.db, store.ItemQuery{Sort: model.SortName})
	return items, err
}

// DeleteInventory removes any inventory and its items.
func (s *Admin) DeleteInventory(ctx context.Context, id int64, actor model.Actor) (*model.Inventory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	inv, err := store.GetInventory(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	return deleteInventory(ctx, s.db, inv)
}

// DeleteItem removes any item.
func (s *Admin) DeleteItem(ctx context.Context, id int64, actor model.Actor) (*model.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return deleteItem(ctx, s.db, item)
}

// Dashboard returns system-wide counts and the most recent records.
func (s *Admin) Dashboard(ctx context.Context, actor model.Actor) (*model.DashboardStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{}
	var err error
	if stats.TotalUsers, stats.AdminUsers, err = store.CountUsers(ctx, s.db); err != nil {
		return nil, err
	}
	if stats.TotalInventories, err = store.CountInventories(ctx, s.db); err != nil {
		return nil, err
	}
	if stats.TotalItems, err = store.CountItems(ctx, s.db); err != nil {
		return nil, err
	}
	if stats.RecentUsers, err = store.RecentUsers(ctx, s.db, RecentLimit); err != nil {
		return nil, err
	}
	if stats.RecentInventories, err = store.RecentInventories(ctx, s.db, RecentLimit); err != nil {
		return nil, err
	}
	if stats.RecentItems, err = store.RecentItems(ctx, s.db, RecentLimit); err != nil {
		return nil, err
	}
	return stats, nil
}

// SiteContent lists every editable site text.
func (s *Admin) SiteContent(ctx context.Context, actor model.Actor) ([]model.SiteContent, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return store.ListSiteContent(ctx, s.db)
}

// SetSiteContent creates or replaces a site text.
func (s *Admin) SetSiteContent(ctx context.Context, in model.SiteContentInput, actor model.Actor) (*model.SiteContent, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return store.SetSiteContent(ctx, s.db, in, model.CreatedBy(actor.UserID))
}

// SiteText is the page copy visible to everyone: a key to value map whose
// lookups fall back to the key.
type SiteText map[string]string

// Get returns the text for key, or key itself when none is set.
func (t SiteText) Get(key string) string {
	if v, ok := t[key]; ok {
		return v
	}
	return key
}

// LoadSiteText reads all site texts. It needs no privileges.
func (s *Admin) LoadSiteText(ctx context.Context) (SiteText, error) {
	values, err := store.SiteContentValues(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return SiteText(values), nil
}
