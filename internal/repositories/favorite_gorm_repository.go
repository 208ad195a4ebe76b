package repositories

import (
	"context"
	"fmt"

	"marketplace/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMFavoriteRepository is a GORM implementation of FavoriteRepository
// backed by the user_favorites join table.
type GORMFavoriteRepository struct {
	db *gorm.DB
}

// NewGORMFavoriteRepository creates a new instance of GORMFavoriteRepository.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMFavoriteRepository {
	return &GORMFavoriteRepository{
		db: db,
	}
}

func insertFavorite(tx *gorm.DB, userID, productID string) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&models.UserFavorite{UserID: userID, ProductID: productID})
	if res.Error != nil {
		return false, fmt.Errorf("failed to add favorite %s for user %s: %w", productID, userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func deleteFavorite(tx *gorm.DB, userID, productID string) (bool, error) {
	res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.UserFavorite{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove favorite %s for user %s: %w", productID, userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Add inserts the pair and reports false if it was already present.
func (r *GORMFavoriteRepository) Add(ctx context.Context, userID, productID string) (bool, error) {
	return insertFavorite(r.db.WithContext(ctx), userID, productID)
}

// Remove deletes the pair and reports false if it was absent.
func (r *GORMFavoriteRepository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	return deleteFavorite(r.db.WithContext(ctx), userID, productID)
}

// Toggle removes the pair if present, otherwise inserts it.
func (r *GORMFavoriteRepository) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	var favorited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := deleteFavorite(tx, userID, productID)
		if err != nil {
			return err
		}
		if removed {
			favorited = false
			return nil
		}
		if _, err := insertFavorite(tx, userID, productID); err != nil {
			return err
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

// Exists reports whether the product is in the user's favorites.
func (r *GORMFavoriteRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserFavorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return n > 0, nil
}

// Count returns the size of the stored favorites set, inactive products
// included.
func (r *GORMFavoriteRepository) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserFavorite{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count favorites for user %s: %w", userID, err)
	}
	return n, nil
}

// ProductIDs returns the stored favorites set in insertion order.
func (r *GORMFavoriteRepository) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.UserFavorite{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("product_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites for user %s: %w", userID, err)
	}
	return ids, nil
}

// ListActiveProducts hydrates the user's favorites, skipping inactive
// products, in insertion order.
func (r *GORMFavoriteRepository) ListActiveProducts(ctx context.Context, userID string) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).
		Scopes(withSellerSummary).
		Joins("JOIN user_favorites ON user_favorites.product_id = products.id").
		Where("user_favorites.user_id = ? AND products.is_active = ?", userID, true).
		Order("user_favorites.id ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load favorite products for user %s: %w", userID, err)
	}
	return products, nil
}
