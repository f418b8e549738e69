package service

import (
	"context"
	"fmt"
	"time"

	"techhub/internal/domain"
	"techhub/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the interface for shopping cart logic. Every
// operation is scoped to the owning user.
type CartService interface {
	// Add puts quantity of a product into the user's cart; adding a
	// product already in the cart increments its quantity instead of
	// creating a second row.
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	Get(ctx context.Context, userID uuid.UUID) ([]*domain.CartEntry, error)
	// UpdateQuantity sets an item's quantity; zero or less removes the
	// item entirely.
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	// The product must exist at add time; it may still be deleted later,
	// which cart reads and order placement each handle on their own.
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return err
	}

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}

	if err := s.cartRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) ([]*domain.CartEntry, error) {
	return s.cartRepo.FindByUser(ctx, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.cartRepo.Delete(ctx, userID, itemID)
	}
	return s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity)
}

func (s *cartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.cartRepo.Delete(ctx, userID, itemID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.DeleteByUser(ctx, userID)
}
