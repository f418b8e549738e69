package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"techhub/internal/domain"
	"techhub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeedProducts populates the catalog with the sample product set when the
// products table is empty. Re-running against a non-empty catalog is a no-op.
func SeedProducts(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := sampleProducts()
	repo := repository.NewProductRepository(db)
	for _, p := range products {
		if err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	logger.Info("Seeded sample catalog", zap.Int("products", len(products)))
	return nil
}

func sampleProducts() []*domain.Product {
	now := time.Now()
	newProduct := func(name, description string, price float64, imageURL, category string, stock int, specs map[string]string) *domain.Product {
		return &domain.Product{
			ID:             uuid.New(),
			Name:           name,
			Description:    description,
			Price:          price,
			ImageURL:       imageURL,
			Category:       category,
			Stock:          stock,
			Specifications: specs,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	return []*domain.Product{
		newProduct("iPhone 15 Pro",
			"The latest iPhone with advanced camera system and titanium design",
			999.99, "https://images.unsplash.com/photo-1499097828500-fac38e25d327",
			"smartphones", 50, map[string]string{
				"display":   "6.1-inch Super Retina XDR",
				"processor": "A17 Pro chip",
				"storage":   "128GB",
				"camera":    "48MP main camera",
			}),
		newProduct("Samsung Galaxy S24",
			"Premium Android smartphone with AI-powered features",
			899.99, "https://images.unsplash.com/photo-1592890288564-76628a30a657",
			"smartphones", 30, map[string]string{
				"display":   "6.2-inch Dynamic AMOLED",
				"processor": "Snapdragon 8 Gen 3",
				"storage":   "256GB",
				"camera":    "50MP triple camera",
			}),
		newProduct("Sony WH-1000XM5",
			"Industry-leading noise canceling wireless headphones",
			399.99, "https://images.unsplash.com/photo-1598327105679-d1e69b1f9818",
			"audio", 25, map[string]string{
				"type":               "Over-ear",
				"connectivity":       "Bluetooth 5.2",
				"battery":            "30 hours",
				"noise_cancellation": "Active",
			}),
		newProduct("MacBook Pro 16-inch",
			"Powerful laptop with M3 Pro chip for professional work",
			2499.99, "https://images.unsplash.com/photo-1552585155-f5c1efa32555",
			"laptops", 15, map[string]string{
				"processor": "Apple M3 Pro",
				"memory":    "18GB unified memory",
				"storage":   "512GB SSD",
				"display":   "16.2-inch Liquid Retina XDR",
			}),
		newProduct("Canon EOS R5",
			"Professional mirrorless camera with 8K video recording",
			3899.99, "https://images.pexels.com/photos/2858481/pexels-photo-2858481.jpeg",
			"cameras", 10, map[string]string{
				"sensor":              "45MP full-frame CMOS",
				"video":               "8K RAW recording",
				"autofocus":           "1053 AF points",
				"image_stabilization": "5-axis",
			}),
		newProduct("LG OLED55C3PUA",
			"55-inch 4K OLED Smart TV with AI-powered processor",
			1299.99, "https://images.unsplash.com/photo-1717295248358-4b8f2c8989d6",
			"televisions", 20, map[string]string{
				"size":       "55 inches",
				"resolution": "4K OLED",
				"smart_tv":   "webOS 23",
				"hdr":        "HDR10, Dolby Vision",
			}),
	}
}
