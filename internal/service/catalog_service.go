package service

import (
	"context"
	"time"

	"techhub/internal/domain"
	"techhub/internal/repository"

	"github.com/google/uuid"
)

// CatalogService defines the interface for product catalog logic. Reads are
// public; writes are reached only through admin routes.
type CatalogService interface {
	List(ctx context.Context, category, search string) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) List(ctx context.Context, category, search string) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, repository.ProductFilter{
		Category: category,
		Search:   search,
	})
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

func (s *catalogService) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	return s.productRepo.Create(ctx, product)
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) error {
	return s.productRepo.Update(ctx, id, update)
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
