package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"techhub/internal/domain"

	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")

// ProductFilter narrows a catalog listing. Zero values mean "no filter".
type ProductFilter struct {
	Category string
	// Search matches name or description, case-insensitively.
	Search string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	FindLowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, image_url, category, stock, specifications, created_at, updated_at"

// Create inserts a new product into the catalog.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	specs, err := marshalSpecs(product.Specifications)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, description, price, image_url, category, stock, specifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.Category,
		product.Stock,
		specs,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update applies a partial update; only the fields set on the update are
// written.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) error {
	sets := []string{}
	args := []interface{}{id}
	argIndex := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Name != nil {
		addSet("name", *update.Name)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.Price != nil {
		addSet("price", *update.Price)
	}
	if update.ImageURL != nil {
		addSet("image_url", *update.ImageURL)
	}
	if update.Category != nil {
		addSet("category", *update.Category)
	}
	if update.Stock != nil {
		addSet("stock", *update.Stock)
	}
	if update.Specifications != nil {
		specs, err := marshalSpecs(update.Specifications)
		if err != nil {
			return err
		}
		addSet("specifications", specs)
	}

	if len(sets) == 0 {
		return nil
	}

	addSet("updated_at", time.Now())

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $1", strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the catalog. Cart rows and order line
// snapshots referencing it are left alone.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	return scanProductRow(r.db.QueryRowContext(ctx, query, id))
}

// List retrieves catalog products, optionally filtered by category and a
// case-insensitive name/description search.
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}
	if strings.TrimSpace(filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY created_at DESC", productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Categories returns the distinct category names in the catalog.
func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Count returns the number of products in the catalog.
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// FindLowStock lists products with stock below threshold.
func (r *productRepository) FindLowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE stock < $1 ORDER BY stock ASC", productColumns)

	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var specs []byte
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
		&product.Category,
		&product.Stock,
		&specs,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(specs, &product.Specifications); err != nil {
		return nil, fmt.Errorf("failed to decode specifications: %w", err)
	}
	return product, nil
}

func scanProductRow(row *sql.Row) (*domain.Product, error) {
	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func marshalSpecs(specs map[string]string) ([]byte, error) {
	if specs == nil {
		specs = map[string]string{}
	}
	b, err := json.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode specifications: %w", err)
	}
	return b, nil
}
