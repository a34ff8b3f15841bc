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

const userColumns = `id, first_name, last_name, email, password_hash, is_admin, created_at`

// CreateUser creates a new user. Admin accounts also get a user_roles row.
func CreateUser(ctx context.Context, db *sqlx.DB, firstName, lastName, email, passwordHash string, isAdmin bool) (*model.User, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, tx.Rebind(
		`INSERT INTO users (first_name, last_name, email, password_hash, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		firstName, lastName, model.NormalizeEmail(email), passwordHash, isAdmin, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := syncAdminRole(ctx, tx, id, isAdmin); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sqlx.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.GetContext(ctx, u, db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email address, or nil if there is none.
func GetUserByEmail(ctx context.Context, db *sqlx.DB, email string) (*model.User, error) {
	u := &model.User{}
	err := db.GetContext(ctx, u, db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`),
		model.NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by last name, then first name.
func ListUsers(ctx context.Context, db *sqlx.DB) ([]model.User, error) {
	var users []model.User
	err := db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// RecentUsers returns the most recently registered users.
func RecentUsers(ctx context.Context, db *sqlx.DB, limit int) ([]model.User, error) {
	var users []model.User
	err := db.SelectContext(ctx, &users, db.Rebind(
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of users and how many of them are admins.
func CountUsers(ctx context.Context, db *sqlx.DB) (total, admins int, err error) {
	var counts struct {
		Total  int `db:"total"`
		Admins int `db:"admins"`
	}
	err = db.GetContext(ctx, &counts,
		`SELECT COUNT(*) AS total,
		        COALESCE(SUM(CASE WHEN is_admin THEN 1 ELSE 0 END), 0) AS admins
		 FROM users`)
	if err != nil {
		return 0, 0, fmt.Errorf("counting users: %w", err)
	}
	return counts.Total, counts.Admins, nil
}

// SetUserAdmin sets a user's admin flag and mirrors it into user_roles in
// one transaction. It returns false if the user does not exist.
func SetUserAdmin(ctx context.Context, db *sqlx.DB, id int64, isAdmin bool) (bool, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET is_admin = ? WHERE id = ?`), isAdmin, id)
	if err != nil {
		return false, fmt.Errorf("updating user admin flag: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating user admin flag: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := syncAdminRole(ctx, tx, id, isAdmin); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing admin flag: %w", err)
	}
	return true, nil
}

func syncAdminRole(ctx context.Context, tx *sqlx.Tx, userID int64, isAdmin bool) error {
	var err error
	if isAdmin {
		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO user_roles (user_id, role) VALUES (?, ?) ON CONFLICT DO NOTHING`),
			userID, model.RoleAdmin)
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(
			`DELETE FROM user_roles WHERE user_id = ? AND role = ?`),
			userID, model.RoleAdmin)
	}
	if err != nil {
		return fmt.Errorf("syncing admin role: %w", err)
	}
	return nil
}

// UserRoles returns the role names assigned to a user.
func UserRoles(ctx context.Context, db *sqlx.DB, userID int64) ([]string, error) {
	var roles []string
	err := db.SelectContext(ctx, &roles, db.Rebind(
		`SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`), userID)
	if err != nil {
		return nil, fmt.Errorf("listing user roles: %w", err)
	}
	return roles, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sqlx.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx, db.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`),
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
