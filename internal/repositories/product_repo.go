package repositories

import (
	"context"

	"marketplace/internal/models"
)

// ProductRepository defines the interface for product data access.
// GetByID returns products regardless of IsActive; callers decide visibility.
type ProductRepository interface {
	Query(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product, fields []string) error
	SetActive(ctx context.Context, id string, active bool) error
}
