package repository

import (
	"context"
	"database/sql"
	"fmt"

	"techhub/internal/domain"

	"github.com/google/uuid"
)

// CheckoutTx is the view of the store an order assembly runs against. All
// calls happen inside one database transaction, so the price snapshots and
// the cart clear commit (or roll back) together.
type CheckoutTx interface {
	// LockCart reads the user's cart rows under FOR UPDATE. Concurrent
	// checkouts of the same cart block here until the first transaction
	// commits; the loser then observes the cleared cart.
	LockCart(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// CheckoutStore runs order assembly transactions.
type CheckoutStore interface {
	// WithinTx begins a transaction, runs fn against it, and commits when
	// fn returns nil. Any error (or panic) rolls everything back.
	WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

type checkoutStore struct {
	db *sql.DB
}

// NewCheckoutStore creates a new instance of CheckoutStore.
func NewCheckoutStore(db *sql.DB) CheckoutStore {
	return &checkoutStore{db: db}
}

func (s *checkoutStore) WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type checkoutTx struct {
	tx *sql.Tx
}

func (t *checkoutTx) LockCart(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at ASC
		FOR UPDATE
	`

	rows, err := t.tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item := &domain.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

func (t *checkoutTx) FindProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	return scanProductRow(t.tx.QueryRowContext(ctx, query, id))
}

// CreateOrder inserts the order row and its line items. The serial primary
// key on order_items preserves the slice order.
func (t *checkoutTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderQuery := `
		INSERT INTO orders (id, user_id, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := t.tx.ExecContext(ctx, orderQuery, order.ID, order.UserID, order.TotalAmount, order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range order.Items {
		_, err := t.tx.ExecContext(ctx, itemQuery, order.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.LineTotal)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

func (t *checkoutTx) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
