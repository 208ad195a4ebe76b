package handlers

import (
	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FavoriteHandler handles HTTP requests for a user's favorites.
type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
	}
}

// RegisterRoutes registers the favorites routes. All of them require a session.
func (h *FavoriteHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	favoriteRoutes := router.Group("/favorites", guards.Required)
	favoriteRoutes.Get("/", h.HandleListFavorites)
	favoriteRoutes.Post("/:productId", h.HandleAddFavorite)
	favoriteRoutes.Delete("/:productId", h.HandleRemoveFavorite)
	favoriteRoutes.Post("/:productId/toggle", h.HandleToggleFavorite)
}

// HandleListFavorites returns the caller's active favorite products.
func (h *FavoriteHandler) HandleListFavorites(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	products, err := h.favoriteService.List(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{
		"favorites": newProductResponses(products),
		"count":     len(products),
	})
}

// HandleAddFavorite adds a product to the caller's favorites.
func (h *FavoriteHandler) HandleAddFavorite(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	change, err := h.favoriteService.Add(c.UserContext(), user.ID, c.Params("productId"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Added to favorites!", fiber.Map{
		"favoriteId":     change.ProductID,
		"favoritesCount": change.Count,
	})
}

// HandleRemoveFavorite removes a product from the caller's favorites.
func (h *FavoriteHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	change, err := h.favoriteService.Remove(c.UserContext(), user.ID, c.Params("productId"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Removed from favorites!", fiber.Map{
		"favoritesCount": change.Count,
	})
}

// HandleToggleFavorite flips a product's membership in the caller's favorites.
func (h *FavoriteHandler) HandleToggleFavorite(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	change, err := h.favoriteService.Toggle(c.UserContext(), user.ID, c.Params("productId"))
	if err != nil {
		return err
	}
	message := "Removed from favorites!"
	if change.IsFavorited {
		message = "Added to favorites!"
	}
	return respond(c, fiber.StatusOK, message, fiber.Map{
		"isFavorited":    change.IsFavorited,
		"favoritesCount": change.Count,
	})
}
