package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog. Specifications is an open
// key-value map stored as JSONB.
type Product struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	Name           string            `json:"name" db:"name"`
	Description    string            `json:"description" db:"description"`
	Price          float64           `json:"price" db:"price"`
	ImageURL       string            `json:"image_url" db:"image_url"`
	Category       string            `json:"category" db:"category"`
	Stock          int               `json:"stock" db:"stock"`
	Specifications map[string]string `json:"specifications" db:"specifications"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// ProductUpdate carries a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name           *string
	Description    *string
	Price          *float64
	ImageURL       *string
	Category       *string
	Stock          *int
	Specifications map[string]string
}

// Empty reports whether the update would touch no fields at all.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.ImageURL == nil && u.Category == nil && u.Stock == nil &&
		u.Specifications == nil
}
