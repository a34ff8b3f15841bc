package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Item is a stock-keeping record that belongs to exactly one inventory.
type Item struct {
	ID          int64     `json:"id" db:"id"`
	InventoryID int64     `json:"inventory_id" db:"inventory_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Price       Cents     `json:"price" db:"price_cents"`
	Code        string    `json:"code" db:"code"`
	Category    string    `json:"category,omitempty" db:"category"`
	SKU         string    `json:"sku,omitempty" db:"sku"`
	HasPhoto    bool      `json:"has_photo" db:"has_photo"`
	CreatedBy   Creator   `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Joined field.
	InventoryName string `json:"inventory_name,omitempty" db:"inventory_name"`
}

// LowStockThreshold is the quantity at or below which an item is flagged as
// low on stock. Item listings filter "low" with ListLowStockBelow instead.
const LowStockThreshold = 5

// ListLowStockBelow is the exclusive upper bound of the "low" stock filter in
// item listings. It differs from LowStockThreshold; both are kept as-is.
const ListLowStockBelow = 10

// TotalValue is price times quantity.
func (i *Item) TotalValue() Cents {
	return i.Price * Cents(i.Quantity)
}

// IsLowStock reports quantity <= LowStockThreshold.
func (i *Item) IsLowStock() bool {
	return i.Quantity <= LowStockThreshold
}

// IsOutOfStock reports quantity == 0.
func (i *Item) IsOutOfStock() bool {
	return i.Quantity == 0
}

// ItemCode formats the display code for the n-th item of an inventory.
func ItemCode(n int) string {
	return fmt.Sprintf("ITEM%03d", n)
}

// ItemInput is the editable part of an item.
type ItemInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	Price       Cents  `json:"price" validate:"min=0"`
	Category    string `json:"category" validate:"max=50"`
	SKU         string `json:"sku" validate:"max=50"`
}

// Normalize trims surrounding whitespace.
func (in *ItemInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.SKU = strings.TrimSpace(in.SKU)
}

// Validate returns ValidationErrors when a field is missing or out of range.
func (in *ItemInput) Validate() error {
	if errs := validateStruct(in, itemMessages); len(errs) > 0 {
		return errs
	}
	return nil
}

var itemMessages = map[string]string{
	"Name.required":   "Item name is required",
	"Name.max":        "Item name cannot exceed 100 characters",
	"Description.max": "Description cannot exceed 500 characters",
	"Quantity.min":    "Quantity must be zero or greater",
	"Price.min":       "Price must be zero or greater",
	"Category.max":    "Category cannot exceed 50 characters",
	"SKU.max":         "SKU cannot exceed 50 characters",
}

// Cents is a monetary amount with two fractional digits.
type Cents int64

func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON encodes the amount as a decimal number, e.g. 29.99.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or string such as 29.99 or "29.99".
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCents parses a decimal amount such as "29.99", "8" or "0.5".
// More than two fractional digits is an error.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if (whole == "" && frac == "") || !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}

	var units int64
	if whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		units = v
	}

	var cents int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = v
	}

	total := Cents(units*100 + cents)
	if neg {
		total = -total
	}
	return total, nil
}

// allDigits reports whether s holds only ASCII digits. strconv accepts a
// leading sign, which an amount's parts must not have.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
