package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// Accounts registers users, checks credentials and changes passwords.
type Accounts struct {
	db *sqlx.DB
}

// NewAccounts returns an Accounts backed by db.
func NewAccounts(db *sqlx.DB) *Accounts {
	return &Accounts{db: db}
}

// Register creates a regular user account.
func (s *Accounts) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = model.NormalizeEmail(reg.Email)
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	existing, err := store.GetUserByEmail(ctx, s.db, reg.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ValidationErrors{"Email": "An account with this email already exists"}
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	return store.CreateUser(ctx, s.db, reg.FirstName, reg.LastName, reg.Email, hash, false)
}

// Authenticate returns the user with the given email and password.
func (s *Accounts) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := store.GetUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// User returns the user with the given ID.
func (s *Accounts) User(ctx context.Context, id int64) (*model.User, error) {
	u, err := store.GetUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *Accounts) ChangePassword(ctx context.Context, actor model.Actor, current, next string) error {
	if actor.Anonymous() {
		return ErrUnauthenticated
	}
	u, err := s.User(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return model.ValidationErrors{"CurrentPassword": "Current password is incorrect"}
	}
	if err := model.ValidatePassword(next); err != nil {
		return model.ValidationErrors{"NewPassword": model.PasswordMessage("New password", err)}
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return store.UpdateUserPassword(ctx, s.db, u.ID, hash)
}

// Bootstrap creates the first administrator when no users exist yet. It
// returns the generated password, or "" if users already exist.
func (s *Accounts) Bootstrap(ctx context.Context, email string) (string, error) {
	total, _, err := store.CountUsers(ctx, s.db)
	if err != nil {
		return "", err
	}
	if total > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	if _, err := store.CreateUser(ctx, s.db, "Site", "Administrator", email, hash, true); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
