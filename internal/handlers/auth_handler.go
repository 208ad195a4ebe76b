package handlers

import (
	"marketplace/internal/apperrors"
	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes. limiter guards the
// credential endpoints and may be nil.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guards Guards, limiter fiber.Handler) {
	authRoutes := router.Group("/auth")
	if limiter != nil {
		authRoutes.Post("/register", limiter, h.HandleRegister)
		authRoutes.Post("/login", limiter, h.HandleLogin)
	} else {
		authRoutes.Post("/register", h.HandleRegister)
		authRoutes.Post("/login", h.HandleLogin)
	}
	authRoutes.Get("/me", guards.Required, h.HandleGetMe)
	authRoutes.Put("/me", guards.Required, h.HandleUpdateMe)
}

type authResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}

	result, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Registration successful!", authResponse{
		Token: result.Token,
		User:  newUserResponse(result.Profile),
	})
}

// HandleLogin handles user login and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}

	result, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Login successful!", authResponse{
		Token: result.Token,
		User:  newUserResponse(result.Profile),
	})
}

// HandleGetMe returns the authenticated user's profile.
func (h *AuthHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	profile, err := h.authService.Profile(c.UserContext(), user)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"user": newUserResponse(profile)})
}

// HandleUpdateMe updates the authenticated user's name.
func (h *AuthHandler) HandleUpdateMe(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}

	profile, err := h.authService.UpdateProfile(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Profile updated successfully", fiber.Map{"user": newUserResponse(profile)})
}
