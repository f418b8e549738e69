package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"techhub/internal/domain"

	"github.com/google/uuid"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// Upsert adds quantity to the user's cart row for a product, creating
	// the row when none exists. The (user, product) pair is unique.
	Upsert(ctx context.Context, item *domain.CartItem) error
	// FindByUser returns cart items joined with product details, oldest
	// first. Items whose product no longer exists are omitted.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartEntry, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository.
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Upsert inserts a cart item or increments the quantity of the existing row
// for the same (user, product) pair.
func (r *cartRepository) Upsert(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// FindByUser joins cart rows with their products. The inner join drops
// items whose product has been deleted, matching how the cart is shown to
// the client.
func (r *cartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartEntry, error) {
	query := `
		SELECT ci.id, ci.quantity, ci.added_at,
		       p.id, p.name, p.description, p.price, p.image_url, p.category, p.stock, p.specifications, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	defer rows.Close()

	entries := []*domain.CartEntry{}
	for rows.Next() {
		entry := &domain.CartEntry{Product: &domain.Product{}}
		var specs []byte
		err := rows.Scan(
			&entry.ID,
			&entry.Quantity,
			&entry.AddedAt,
			&entry.Product.ID,
			&entry.Product.Name,
			&entry.Product.Description,
			&entry.Product.Price,
			&entry.Product.ImageURL,
			&entry.Product.Category,
			&entry.Product.Stock,
			&specs,
			&entry.Product.CreatedAt,
			&entry.Product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart entry: %w", err)
		}
		if err := json.Unmarshal(specs, &entry.Product.Specifications); err != nil {
			return nil, fmt.Errorf("failed to decode specifications: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart entries: %w", err)
	}

	return entries, nil
}

// UpdateQuantity sets the quantity of a cart item owned by userID.
// Quantities of zero or less belong to Delete, not here.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	query := `UPDATE cart_items SET quantity = $3 WHERE id = $2 AND user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Delete removes a single cart item owned by userID.
func (r *cartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $2 AND user_id = $1", userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// DeleteByUser clears a user's cart.
func (r *cartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

