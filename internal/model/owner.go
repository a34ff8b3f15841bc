package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Actor is the authenticated identity performing an operation.
// The zero value is an anonymous visitor.
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// Anonymous reports whether no user is signed in.
func (a Actor) Anonymous() bool {
	return a.UserID == 0
}

// Creator references the user who created a resource. A resource may have no
// creator (legacy rows, or the creating account was removed).
type Creator struct {
	id    int64
	valid bool
}

// NoCreator is a resource without an owner.
var NoCreator = Creator{}

// CreatedBy returns a Creator for the given user.
func CreatedBy(userID int64) Creator {
	return Creator{id: userID, valid: true}
}

// UserID returns the owner's id and whether one is present.
func (c Creator) UserID() (int64, bool) {
	return c.id, c.valid
}

// Is reports whether the creator is the given user.
func (c Creator) Is(userID int64) bool {
	return c.valid && userID != 0 && c.id == userID
}

// Scan implements sql.Scanner.
func (c *Creator) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = NoCreator
	case int64:
		*c = CreatedBy(v)
	case int32:
		*c = CreatedBy(int64(v))
	case int:
		*c = CreatedBy(int64(v))
	default:
		return fmt.Errorf("scanning creator: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (c Creator) Value() (driver.Value, error) {
	if !c.valid {
		return nil, nil
	}
	return c.id, nil
}

func (c Creator) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.id)
}

func (c *Creator) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = NoCreator
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("decoding creator: %w", err)
	}
	*c = CreatedBy(id)
	return nil
}

// CanModify reports whether actor may edit or delete a resource created by
// creator: the owner or any admin. Ownerless resources are admin-only.
func CanModify(creator Creator, actor Actor) bool {
	if actor.Anonymous() {
		return false
	}
	return actor.IsAdmin || creator.Is(actor.UserID)
}
