package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/model"
)

const itemSelect = `
SELECT it.id, it.inventory_id, it.name, it.description, it.quantity, it.price_cents,
       it.code, it.category, it.sku, it.created_by, it.created_at,
       inv.name AS inventory_name,
       EXISTS (SELECT 1 FROM item_photos p WHERE p.item_id = it.id) AS has_photo
FROM items it
JOIN inventories inv ON inv.id = it.inventory_id`

// ItemQuery selects a page of items.
type ItemQuery struct {
	InventoryID int64 // 0 lists items of every inventory
	Search      string
	Category    string
	Stock       model.StockLevel
	Sort        model.ItemSort
	Limit       int // 0 means no limit
	Offset      int
}

func (q ItemQuery) where() (string, []any) {
	var conds []string
	var args []any

	if q.InventoryID != 0 {
		conds = append(conds, "it.inventory_id = ?")
		args = append(args, q.InventoryID)
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		p := containsPattern(s)
		fields := []string{"it.name", "it.description", "it.sku"}
		if q.InventoryID == 0 {
			fields = append(fields, "inv.name")
		}
		var ors []string
		for _, f := range fields {
			ors = append(ors, foldLike(f))
			args = append(args, p)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if c := strings.TrimSpace(q.Category); c != "" {
		conds = append(conds, "it.category = ?")
		args = append(args, c)
	}

	switch q.Stock {
	case model.StockLow:
		conds = append(conds, "it.quantity > 0 AND it.quantity < ?")
		args = append(args, model.ListLowStockBelow)
	case model.StockOut:
		conds = append(conds, "it.quantity = 0")
	case model.StockGood:
		conds = append(conds, "it.quantity >= ?")
		args = append(args, model.ListLowStockBelow)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

func (q ItemQuery) orderBy() string {
	switch q.Sort {
	case model.SortQuantity:
		return "\nORDER BY it.quantity, it.id"
	case model.SortPrice:
		return "\nORDER BY it.price_cents, it.id"
	case model.SortDate:
		return "\nORDER BY it.created_at DESC, it.id DESC"
	default:
		return "\nORDER BY it.name, it.id"
	}
}

// ListItems returns one page of items matching the query, along with the
// number of matching items across all pages.
func ListItems(ctx context.Context, db *sqlx.DB, q ItemQuery) ([]model.Item, int, error) {
	where, args := q.where()

	var total int
	err := db.GetContext(ctx, &total, db.Rebind(`
SELECT COUNT(*) FROM items it
JOIN inventories inv ON inv.id = it.inventory_id`+where), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	query := itemSelect + where + q.orderBy()
	if q.Limit > 0 {
		query += "\nLIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	var items []model.Item
	if err := db.SelectContext(ctx, &items, db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	return items, total, nil
}

// RecentItems returns the most recently created items.
func RecentItems(ctx context.Context, db *sqlx.DB, limit int) ([]model.Item, error) {
	var items []model.Item
	err := db.SelectContext(ctx, &items, db.Rebind(itemSelect+`
ORDER BY it.created_at DESC, it.id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent items: %w", err)
	}
	return items, nil
}

// ListCategories returns the distinct non-empty categories, optionally
// restricted to one inventory.
func ListCategories(ctx context.Context, db *sqlx.DB, inventoryID int64) ([]string, error) {
	query := `SELECT DISTINCT category FROM items WHERE category <> ''`
	var args []any
	if inventoryID != 0 {
		query += ` AND inventory_id = ?`
		args = append(args, inventoryID)
	}
	query += ` ORDER BY category`

	var categories []string
	if err := db.SelectContext(ctx, &categories, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sqlx.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.GetContext(ctx, item, db.Rebind(itemSelect+`
WHERE it.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// CountItems returns the number of items across all inventories.
func CountItems(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM items`); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// NewItem holds the fields of an item being created.
type NewItem struct {
	InventoryID int64
	Input       model.ItemInput
	CreatedBy   model.Creator
	CreatedAt   time.Time
}

// CreateItem inserts an item and assigns its display code in one
// transaction. The code is ITEM followed by the inventory's item count plus
// one; if that code is taken the next free number is used. It returns nil
// if the inventory does not exist.
func CreateItem(ctx context.Context, db *sqlx.DB, n NewItem) (*model.Item, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM inventories WHERE id = ?`), n.InventoryID); err != nil {
		return nil, fmt.Errorf("checking inventory: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	code, err := nextItemCode(ctx, tx, n.InventoryID)
	if err != nil {
		return nil, err
	}

	in := n.Input
	var id int64
	err = tx.GetContext(ctx, &id, tx.Rebind(
		`INSERT INTO items (inventory_id, name, description, quantity, price_cents, code, category, sku, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		n.InventoryID, in.Name, in.Description, in.Quantity, in.Price, code, in.Category, in.SKU,
		n.CreatedBy, n.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, id)
}

func nextItemCode(ctx context.Context, tx *sqlx.Tx, inventoryID int64) (string, error) {
	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(*) FROM items WHERE inventory_id = ?`), inventoryID); err != nil {
		return "", fmt.Errorf("counting inventory items: %w", err)
	}

	var taken []string
	if err := tx.SelectContext(ctx, &taken, tx.Rebind(`SELECT code FROM items WHERE inventory_id = ?`), inventoryID); err != nil {
		return "", fmt.Errorf("listing item codes: %w", err)
	}
	used := make(map[string]bool, len(taken))
	for _, c := range taken {
		used[c] = true
	}

	for n := count + 1; ; n++ {
		if code := model.ItemCode(n); !used[code] {
			return code, nil
		}
	}
}

// UpdateItem changes an item's editable fields. Inventory, display code,
// creator and creation time are never written. It returns the number of rows
// changed.
func UpdateItem(ctx context.Context, db *sqlx.DB, id int64, in model.ItemInput) (int64, error) {
	result, err := db.ExecContext(ctx, db.Rebind(
		`UPDATE items SET name = ?, description = ?, quantity = ?, price_cents = ?, category = ?, sku = ?
		 WHERE id = ?`),
		in.Name, in.Description, in.Quantity, in.Price, in.Category, in.SKU, id,
	)
	if err != nil {
		return 0, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating item: %w", err)
	}
	return n, nil
}

// DeleteItem deletes an item. It returns false if the item did not exist.
func DeleteItem(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}

// SetItemPhoto stores or replaces an item's photo.
func SetItemPhoto(ctx context.Context, db *sqlx.DB, itemID int64, data []byte, mime string) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO item_photos (item_id, data, mime, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET data = excluded.data, mime = excluded.mime, updated_at = excluded.updated_at`),
		itemID, data, mime, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo data and MIME type. Data is nil if
// the item has no photo.
func GetItemPhoto(ctx context.Context, db *sqlx.DB, itemID int64) ([]byte, string, error) {
	var photo struct {
		Data []byte `db:"data"`
		Mime string `db:"mime"`
	}
	err := db.GetContext(ctx, &photo, db.Rebind(`SELECT data, mime FROM item_photos WHERE item_id = ?`), itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo.Data, photo.Mime, nil
}
