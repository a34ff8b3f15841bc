package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor returns the acting identity for this user.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, IsAdmin: u.IsAdmin}
}

// RoleAdmin is the role name mirrored into user_roles for admin accounts.
const RoleAdmin = "admin"

// Password length limits. bcrypt only reads the first 72 bytes of its input,
// so longer passwords are refused rather than silently truncated.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password cannot exceed %d bytes", MaxPasswordLength)
)

// ValidatePassword checks password strength rules.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// PasswordMessage turns a ValidatePassword error into a form message for the
// field shown as label.
func PasswordMessage(label string, err error) string {
	if errors.Is(err, ErrPasswordTooLong) {
		return fmt.Sprintf("%s cannot exceed %d bytes", label, MaxPasswordLength)
	}
	return fmt.Sprintf("%s must be at least %d characters", label, MinPasswordLength)
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Registration holds the fields submitted when creating an account.
type Registration struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required"`
}

// Validate checks the registration and returns ValidationErrors on failure.
func (r *Registration) Validate() error {
	errs := validateStruct(r, registrationMessages)
	if _, ok := errs["Password"]; !ok {
		if err := ValidatePassword(r.Password); err != nil {
			errs = errs.add("Password", PasswordMessage("Password", err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

var registrationMessages = map[string]string{
	"FirstName.required": "First name is required",
	"FirstName.max":      "First name cannot exceed 50 characters",
	"LastName.required":  "Last name is required",
	"LastName.max":       "Last name cannot exceed 50 characters",
	"Email.required":     "Email is required",
	"Email.email":        "Email address is not valid",
	"Email.max":          "Email address is too long",
	"Password.required":  "Password is required",
}
