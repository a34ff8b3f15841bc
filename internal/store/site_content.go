package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/model"
)

const siteContentColumns = `id, content_key, value, description, last_updated, updated_by`

// ListSiteContent returns all site content entries ordered by key.
func ListSiteContent(ctx context.Context, db *sqlx.DB) ([]model.SiteContent, error) {
	var entries []model.SiteContent
	err := db.SelectContext(ctx, &entries, `SELECT `+siteContentColumns+` FROM site_content ORDER BY content_key`)
	if err != nil {
		return nil, fmt.Errorf("listing site content: %w", err)
	}
	return entries, nil
}

// GetSiteContent returns the entry for key, or nil if there is none.
func GetSiteContent(ctx context.Context, db *sqlx.DB, key string) (*model.SiteContent, error) {
	c := &model.SiteContent{}
	err := db.GetContext(ctx, c, db.Rebind(`SELECT `+siteContentColumns+` FROM site_content WHERE content_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting site content: %w", err)
	}
	return c, nil
}

// SetSiteContent creates or replaces the entry for a key.
func SetSiteContent(ctx context.Context, db *sqlx.DB, in model.SiteContentInput, updatedBy model.Creator) (*model.SiteContent, error) {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO site_content (content_key, value, description, last_updated, updated_by)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (content_key) DO UPDATE SET
		     value = excluded.value,
		     description = excluded.description,
		     last_updated = excluded.last_updated,
		     updated_by = excluded.updated_by`),
		in.Key, in.Value, in.Description, time.Now().UTC(), updatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("storing site content: %w", err)
	}
	return GetSiteContent(ctx, db, in.Key)
}

// SiteContentValues returns every entry as a key to value map.
func SiteContentValues(ctx context.Context, db *sqlx.DB) (map[string]string, error) {
	entries, err := ListSiteContent(ctx, db)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	return values, nil
}
