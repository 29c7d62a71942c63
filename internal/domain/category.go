package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups ads for browsing. Slug is unique and URL-safe.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Active      bool      `json:"active" db:"active"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
