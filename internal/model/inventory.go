package model

import (
	"strings"
	"time"
)

// Inventory is a named collection of items.
type Inventory struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedBy   Creator   `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Aggregates over the inventory's items (not always populated).
	ItemCount     int   `json:"item_count" db:"item_count"`
	TotalQuantity int   `json:"total_quantity" db:"total_quantity"`
	TotalValue    Cents `json:"total_value" db:"total_value"`

	Items []Item `json:"items,omitempty" db:"-"`
}

// InventoryInput is the editable part of an inventory.
type InventoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// Normalize trims surrounding whitespace.
func (in *InventoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
}

// Validate returns ValidationErrors when a field is missing or too long.
func (in *InventoryInput) Validate() error {
	if errs := validateStruct(in, inventoryMessages); len(errs) > 0 {
		return errs
	}
	return nil
}

var inventoryMessages = map[string]string{
	"Name.required":   "Inventory name is required",
	"Name.max":        "Inventory name cannot exceed 100 characters",
	"Description.max": "Description cannot exceed 500 characters",
}
