package services

import (
	"context"
	"errors"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"go.uber.org/zap"
)

var (
	ErrAlreadyFavorited = apperrors.Conflict("Product already in favorites")
	ErrNotInFavorites   = apperrors.NotFound("Product not in favorites")
)

// FavoriteChange reports the state after a favorites mutation. Count is
// the size of the stored set, which may include inactive products.
type FavoriteChange struct {
	ProductID   string
	IsFavorited bool
	Count       int64
}

// FavoriteService maintains each user's favorites set.
type FavoriteService struct {
	favorites repositories.FavoriteRepository
	products  repositories.ProductRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewFavoriteService creates a new FavoriteService. publisher may be nil.
func NewFavoriteService(favorites repositories.FavoriteRepository, products repositories.ProductRepository, publisher EventPublisher, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		products:  products,
		publisher: publisher,
		logger:    logger,
	}
}

// requireActiveProduct is the NotFound guard shared by Add and Toggle.
func (s *FavoriteService) requireActiveProduct(ctx context.Context, productID string) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return apperrors.Internal("Failed to fetch product", err)
	}
	if !product.IsActive {
		return ErrProductNotFound
	}
	return nil
}

func (s *FavoriteService) changed(ctx context.Context, userID, productID string, favorited bool) (*FavoriteChange, error) {
	count, err := s.favorites.Count(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to count favorites", err)
	}
	eventType := EventFavoriteRemoved
	if favorited {
		eventType = EventFavoriteAdded
	}
	publishEvent(s.publisher, s.logger, eventType, map[string]interface{}{
		"userId":    userID,
		"productId": productID,
	})
	return &FavoriteChange{ProductID: productID, IsFavorited: favorited, Count: count}, nil
}

// Add puts an active product into the user's favorites.
func (s *FavoriteService) Add(ctx context.Context, userID, productID string) (*FavoriteChange, error) {
	if err := s.requireActiveProduct(ctx, productID); err != nil {
		return nil, err
	}
	inserted, err := s.favorites.Add(ctx, userID, productID)
	if err != nil {
		return nil, apperrors.Internal("Failed to add favorite", err)
	}
	if !inserted {
		return nil, ErrAlreadyFavorited
	}
	return s.changed(ctx, userID, productID, true)
}

// Remove takes a product out of the user's favorites. The product itself
// need not be active.
func (s *FavoriteService) Remove(ctx context.Context, userID, productID string) (*FavoriteChange, error) {
	removed, err := s.favorites.Remove(ctx, userID, productID)
	if err != nil {
		return nil, apperrors.Internal("Failed to remove favorite", err)
	}
	if !removed {
		return nil, ErrNotInFavorites
	}
	return s.changed(ctx, userID, productID, false)
}

// Toggle flips membership of an active product in the user's favorites.
func (s *FavoriteService) Toggle(ctx context.Context, userID, productID string) (*FavoriteChange, error) {
	if err := s.requireActiveProduct(ctx, productID); err != nil {
		return nil, err
	}
	favorited, err := s.favorites.Toggle(ctx, userID, productID)
	if err != nil {
		return nil, apperrors.Internal("Failed to toggle favorite", err)
	}
	return s.changed(ctx, userID, productID, favorited)
}

// List returns the user's active favorite products in insertion order.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.Product, error) {
	products, err := s.favorites.ListActiveProducts(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch favorites", err)
	}
	return products, nil
}

// IsFavorited reports whether the product is in the user's stored set.
func (s *FavoriteService) IsFavorited(ctx context.Context, userID, productID string) (bool, error) {
	ok, err := s.favorites.Exists(ctx, userID, productID)
	if err != nil {
		return false, apperrors.Internal("Failed to check favorite", err)
	}
	return ok, nil
}
