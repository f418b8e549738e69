package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusPending is the status every order starts in. Admins may move
// orders to arbitrary non-empty status values afterwards.
const OrderStatusPending = "pending"

// OrderItem is a frozen snapshot of one product's contribution to an order.
// Name and UnitPrice are copied at order time, so later product edits or
// deletion cannot change historical orders.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice float64   `json:"price" db:"unit_price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	LineTotal float64   `json:"total" db:"line_total"`
}

// Order is an immutable record of a checkout. TotalAmount equals the sum of
// the line totals at creation time. Orders are never deleted.
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Status      string      `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// OrderWithUser decorates an order with its owner's name and email for the
// admin listing.
type OrderWithUser struct {
	Order
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email,omitempty"`
}
