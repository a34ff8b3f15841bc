package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sqliteSchema is the full SQLite database schema.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role    TEXT NOT NULL,
    PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS inventories (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_by  INTEGER REFERENCES users(id) ON DELETE SET NULL,
    created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id           INTEGER PRIMARY KEY,
    inventory_id INTEGER NOT NULL REFERENCES inventories(id) ON DELETE CASCADE,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    quantity     INTEGER NOT NULL CHECK (quantity >= 0),
    price_cents  INTEGER NOT NULL CHECK (price_cents >= 0),
    code         TEXT NOT NULL,
    category     TEXT NOT NULL DEFAULT '',
    sku          TEXT NOT NULL DEFAULT '',
    created_by   INTEGER REFERENCES users(id) ON DELETE SET NULL,
    created_at   DATETIME NOT NULL,
    UNIQUE (inventory_id, code)
);

CREATE TABLE IF NOT EXISTS item_photos (
    item_id    INTEGER PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS site_content (
    id           INTEGER PRIMARY KEY,
    content_key  TEXT NOT NULL UNIQUE,
    value        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    last_updated DATETIME NOT NULL,
    updated_by   INTEGER REFERENCES users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// postgresSchema mirrors sqliteSchema with Postgres column types.
const postgresSchema = `
CREATE OR REPLACE FUNCTION fold(t TEXT) RETURNS TEXT
    LANGUAGE SQL IMMUTABLE
    AS $$ SELECT LOWER(t) $$;
CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role    TEXT NOT NULL,
    PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS inventories (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_by  BIGINT REFERENCES users(id) ON DELETE SET NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id           BIGSERIAL PRIMARY KEY,
    inventory_id BIGINT NOT NULL REFERENCES inventories(id) ON DELETE CASCADE,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    quantity     INTEGER NOT NULL CHECK (quantity >= 0),
    price_cents  BIGINT NOT NULL CHECK (price_cents >= 0),
    code         TEXT NOT NULL,
    category     TEXT NOT NULL DEFAULT '',
    sku          TEXT NOT NULL DEFAULT '',
    created_by   BIGINT REFERENCES users(id) ON DELETE SET NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    UNIQUE (inventory_id, code)
);

CREATE TABLE IF NOT EXISTS item_photos (
    item_id    BIGINT PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
    data       BYTEA NOT NULL,
    mime       TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS site_content (
    id           BIGSERIAL PRIMARY KEY,
    content_key  TEXT NOT NULL UNIQUE,
    value        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    last_updated TIMESTAMPTZ NOT NULL,
    updated_by   BIGINT REFERENCES users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent and valid on both dialects. Append new
// migrations at the end.
var migrations = []string{
	// Migration 1: index the columns item listings filter on.
	`CREATE INDEX IF NOT EXISTS idx_items_inventory ON items(inventory_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`,
	// Migration 2: recent-first dashboard listings.
	`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_inventories_created_at ON inventories(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at)`,
}

func schemaFor(db *sqlx.DB) string {
	if db.DriverName() == "pgx" {
		return postgresSchema
	}
	return sqliteSchema
}

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schemaFor(db)); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sqlx.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
