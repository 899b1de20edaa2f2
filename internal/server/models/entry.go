// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"legacyvault/internal/common"
)

// Category partitions entries into the four fixed planning areas.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryLegal    Category = "legal"
	CategoryDigital  Category = "digital"
	CategoryWishes   Category = "wishes"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryPersonal, CategoryLegal, CategoryDigital, CategoryWishes}

// ParseCategory validates s against the fixed enumeration.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", common.ErrInvalidCategory
	}
	return c, nil
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryLegal, CategoryDigital, CategoryWishes:
		return true
	}
	return false
}

// Entry is a user-owned record within a category, with an optional file
// attachment referenced by URL.
//
// ID is assigned by the database on creation and never changes. UserID is
// set once at creation; ownership cannot be transferred. FileURL is empty
// unless an attachment was uploaded.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"fileUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
