package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techhub/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access. Order rows
// are created by the checkout store and are append-only afterwards: only
// the status column is ever mutated, and only by admins.
type OrderRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
	FindAllWithUsers(ctx context.Context) ([]*domain.OrderWithUser, error)
	FindRecentWithUsers(ctx context.Context, limit int) ([]*domain.OrderWithUser, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// FindByUser lists a user's orders, newest first, line items included.
func (r *orderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.Status, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByIDForUser retrieves one order, scoped to its owner.
func (r *orderRepository) FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, orderID, userID).Scan(
		&order.ID, &order.UserID, &order.TotalAmount, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// FindAllWithUsers lists every order, newest first, with owner name/email.
func (r *orderRepository) FindAllWithUsers(ctx context.Context) ([]*domain.OrderWithUser, error) {
	return r.findWithUsers(ctx, 0)
}

// FindRecentWithUsers lists the most recent orders with owner names.
func (r *orderRepository) FindRecentWithUsers(ctx context.Context, limit int) ([]*domain.OrderWithUser, error) {
	return r.findWithUsers(ctx, limit)
}

func (r *orderRepository) findWithUsers(ctx context.Context, limit int) ([]*domain.OrderWithUser, error) {
	query := `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.created_at, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.OrderWithUser{}
	plain := []*domain.Order{}
	for rows.Next() {
		order := &domain.OrderWithUser{}
		err := rows.Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.Status, &order.CreatedAt, &order.UserName, &order.UserEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
		plain = append(plain, &order.Order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, plain); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads line items for the given orders in one query.
func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]interface{}, 0, len(orders))
	for i, order := range orders {
		order.Items = []domain.OrderItem{}
		byID[order.ID] = order
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, order.ID)
	}

	query := fmt.Sprintf(`
		SELECT order_id, product_id, name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id IN (%s)
		ORDER BY id ASC
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		item := domain.OrderItem{}
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &item.LineTotal); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

// UpdateStatus sets an order's status.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $2 WHERE id = $1", orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Count returns the total number of orders.
func (r *orderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of orders with the given status.
func (r *orderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE status = $1", status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return count, nil
}

// TotalRevenue sums total_amount over all orders.
func (r *orderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	if err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(total_amount), 0) FROM orders").Scan(&revenue); err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return revenue, nil
}
