package model

import (
	"strings"
	"time"
)

// SiteContent is an editable piece of page copy.
type SiteContent struct {
	ID          int64     `json:"id" db:"id"`
	Key         string    `json:"key" db:"content_key"`
	Value       string    `json:"value" db:"value"`
	Description string    `json:"description,omitempty" db:"description"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
	UpdatedBy   Creator   `json:"updated_by" db:"updated_by"`
}

// SiteContentInput is the editable part of a site content entry.
type SiteContentInput struct {
	Key         string `validate:"required,max=100"`
	Value       string `validate:"required,max=1000"`
	Description string `validate:"max=200"`
}

// Normalize trims surrounding whitespace.
func (in *SiteContentInput) Normalize() {
	in.Key = strings.TrimSpace(in.Key)
	in.Value = strings.TrimSpace(in.Value)
	in.Description = strings.TrimSpace(in.Description)
}

// Validate returns ValidationErrors when a field is missing or too long.
func (in *SiteContentInput) Validate() error {
	if errs := validateStruct(in, siteContentMessages); len(errs) > 0 {
		return errs
	}
	return nil
}

var siteContentMessages = map[string]string{
	"Key.required":    "Key is required",
	"Key.max":         "Key cannot exceed 100 characters",
	"Value.required":  "Value is required",
	"Value.max":       "Value cannot exceed 1000 characters",
	"Description.max": "Description cannot exceed 200 characters",
}

// DashboardStats summarizes the whole system for administrators.
type DashboardStats struct {
	TotalUsers        int         `json:"total_users"`
	TotalInventories  int         `json:"total_inventories"`
	TotalItems        int         `json:"total_items"`
	AdminUsers        int         `json:"admin_users"`
	RecentUsers       []User      `json:"recent_users"`
	RecentInventories []Inventory `json:"recent_inventories"`
	RecentItems       []Item      `json:"recent_items"`
}
