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

// inventorySelect reads inventories with their derived totals.
const inventorySelect = `
SELECT inv.id, inv.name, inv.description, inv.created_by, inv.created_at,
       COUNT(it.id) AS item_count,
       CAST(COALESCE(SUM(it.quantity), 0) AS BIGINT) AS total_quantity,
       CAST(COALESCE(SUM(it.quantity * it.price_cents), 0) AS BIGINT) AS total_value
FROM inventories inv
LEFT JOIN items it ON it.inventory_id = inv.id`

const inventoryGroupBy = `
GROUP BY inv.id, inv.name, inv.description, inv.created_by, inv.created_at`

// ListInventories returns all inventories ordered by name. A non-empty search
// keeps only inventories whose name or description contains it, ignoring case.
func ListInventories(ctx context.Context, db *sqlx.DB, search string) ([]model.Inventory, error) {
	query := inventorySelect
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		query += `
WHERE ` + foldLike("inv.name") + ` OR ` + foldLike("inv.description")
		p := containsPattern(search)
		args = append(args, p, p)
	}
	query += inventoryGroupBy + `
ORDER BY inv.name, inv.id`

	var inventories []model.Inventory
	if err := db.SelectContext(ctx, &inventories, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing inventories: %w", err)
	}
	return inventories, nil
}

// RecentInventories returns the most recently created inventories.
func RecentInventories(ctx context.Context, db *sqlx.DB, limit int) ([]model.Inventory, error) {
	var inventories []model.Inventory
	err := db.SelectContext(ctx, &inventories, db.Rebind(inventorySelect+inventoryGroupBy+`
ORDER BY inv.created_at DESC, inv.id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent inventories: %w", err)
	}
	return inventories, nil
}

// GetInventory returns an inventory with its totals, or nil if there is none.
func GetInventory(ctx context.Context, db *sqlx.DB, id int64) (*model.Inventory, error) {
	inv := &model.Inventory{}
	err := db.GetContext(ctx, inv, db.Rebind(inventorySelect+`
WHERE inv.id = ?`+inventoryGroupBy), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory: %w", err)
	}
	return inv, nil
}

// InventoryExists reports whether an inventory with the given ID exists.
func InventoryExists(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(`SELECT COUNT(*) FROM inventories WHERE id = ?`), id); err != nil {
		return false, fmt.Errorf("checking inventory: %w", err)
	}
	return n > 0, nil
}

// CountInventories returns the number of inventories.
func CountInventories(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM inventories`); err != nil {
		return 0, fmt.Errorf("counting inventories: %w", err)
	}
	return n, nil
}

// CreateInventory inserts an inventory and returns it.
func CreateInventory(ctx context.Context, db *sqlx.DB, name, description string, createdBy model.Creator, createdAt time.Time) (*model.Inventory, error) {
	var id int64
	err := db.GetContext(ctx, &id, db.Rebind(
		`INSERT INTO inventories (name, description, created_by, created_at)
		 VALUES (?, ?, ?, ?) RETURNING id`),
		name, description, createdBy, createdAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating inventory: %w", err)
	}
	return GetInventory(ctx, db, id)
}

// UpdateInventory changes an inventory's name and description. Creator and
// creation time are never written. It returns the number of rows changed.
func UpdateInventory(ctx context.Context, db *sqlx.DB, id int64, name, description string) (int64, error) {
	result, err := db.ExecContext(ctx, db.Rebind(
		`UPDATE inventories SET name = ?, description = ? WHERE id = ?`),
		name, description, id,
	)
	if err != nil {
		return 0, fmt.Errorf("updating inventory: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating inventory: %w", err)
	}
	return n, nil
}

// DeleteInventory deletes an inventory and all of its items in one
// transaction. It returns false if the inventory did not exist.
func DeleteInventory(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM items WHERE inventory_id = ?`), id); err != nil {
		return false, fmt.Errorf("deleting inventory items: %w", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM inventories WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("deleting inventory: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting inventory: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing inventory delete: %w", err)
	}
	return true, nil
}
