package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techhub/internal/config"
	"techhub/internal/domain"
	"techhub/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductGone is returned under the "fail" missing-product policy
	// when a cart line references a product that no longer exists.
	ErrProductGone = errors.New("product in cart no longer exists")
)

// OrderService defines the interface for order placement and management.
type OrderService interface {
	// PlaceOrder converts the user's cart into an immutable order and
	// clears the cart, all in one transaction. Line totals are computed
	// from current product prices (price at checkout, not price at
	// add-to-cart time).
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	Get(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.OrderWithUser, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error
}

type orderService struct {
	checkout  repository.CheckoutStore
	orderRepo repository.OrderRepository
	// missingProductPolicy decides what happens when a cart line's product
	// was deleted before checkout: skip the line or fail the order.
	missingProductPolicy string
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(checkout repository.CheckoutStore, orderRepo repository.OrderRepository, missingProductPolicy string) OrderService {
	return &orderService{
		checkout:             checkout,
		orderRepo:            orderRepo,
		missingProductPolicy: missingProductPolicy,
	}
}

// PlaceOrder assembles an order from the user's cart snapshot. The whole
// sequence (read cart, snapshot prices, write order, clear cart) runs in a
// single transaction with the cart rows locked, so two concurrent
// placements of the same cart produce exactly one order: the second one
// finds the cart cleared and fails with ErrEmptyCart.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order

	err := s.checkout.WithinTx(ctx, func(tx repository.CheckoutTx) error {
		cartItems, err := tx.LockCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		items := make([]domain.OrderItem, 0, len(cartItems))
		var total float64
		for _, cartItem := range cartItems {
			product, err := tx.FindProduct(ctx, cartItem.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					if s.missingProductPolicy == config.MissingProductFail {
						return fmt.Errorf("%w: %s", ErrProductGone, cartItem.ProductID)
					}
					// skip policy: drop the dangling line
					continue
				}
				return err
			}

			lineTotal := product.Price * float64(cartItem.Quantity)
			items = append(items, domain.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  cartItem.Quantity,
				LineTotal: lineTotal,
			})
			total += lineTotal
		}

		// Skipping can leave nothing to order; no empty orders either way.
		if len(items) == 0 {
			return ErrEmptyCart
		}

		order = &domain.Order{
			ID:          uuid.New(),
			UserID:      userID,
			Items:       items,
			TotalAmount: total,
			Status:      domain.OrderStatusPending,
			CreatedAt:   time.Now(),
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.ClearCart(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.FindByUser(ctx, userID)
}

func (s *orderService) Get(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByIDForUser(ctx, orderID, userID)
}

func (s *orderService) ListAll(ctx context.Context) ([]*domain.OrderWithUser, error) {
	return s.orderRepo.FindAllWithUsers(ctx)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}
