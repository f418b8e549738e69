package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product in a user's cart. There is at most one row per
// (user, product) pair; adding the same product again increments Quantity.
// Quantity is always positive once persisted.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// CartEntry is a cart item joined with its product details, as returned to
// the client. Items whose product has been deleted are omitted from cart
// reads.
type CartEntry struct {
	ID       uuid.UUID `json:"id"`
	Product  *Product  `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}
