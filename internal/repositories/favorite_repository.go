package repositories

import (
	"context"

	"marketplace/internal/models"
)

// FavoriteRepository stores the user/product favorites relation. Every
// mutation is a single atomic statement (or transaction) against the store.
type FavoriteRepository interface {
	// Add inserts the pair and reports false if it was already present.
	Add(ctx context.Context, userID, productID string) (bool, error)
	// Remove deletes the pair and reports false if it was absent.
	Remove(ctx context.Context, userID, productID string) (bool, error)
	// Toggle flips membership and returns the resulting state.
	Toggle(ctx context.Context, userID, productID string) (bool, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
	ProductIDs(ctx context.Context, userID string) ([]string, error)
	ListActiveProducts(ctx context.Context, userID string) ([]models.Product, error)
}
