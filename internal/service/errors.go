// Package service implements the inventory, item, admin and account
// operations. Every mutating operation takes the acting user explicitly and
// enforces the owner-or-admin rule before touching the store.
package service

import (
	"errors"

	"github.com/erazemk/zaloga/internal/model"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("permission denied")
	ErrUnauthenticated = errors.New("authentication required")
	// ErrConflict means a write to an existing record changed nothing.
	ErrConflict = errors.New("write conflict")
	// ErrSelfToggle is returned when an admin tries to change their own role.
	ErrSelfToggle = errors.New("you cannot change your own admin status")
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// authorize maps a permission decision to an error.
func authorize(actor model.Actor, allowed bool) error {
	if actor.Anonymous() {
		return ErrUnauthenticated
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}
