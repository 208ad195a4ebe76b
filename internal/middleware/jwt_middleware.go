package middleware

import (
	"context"
	"strings"

	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserKey is the Locals key holding the authenticated *models.User.
const UserKey = "user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired rejects the request with 401 unless it carries a valid token
// for an existing user, and stores that user in the context.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.Authenticate(c.UserContext(), bearerToken(c))
		if err != nil {
			return err
		}
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and silently
// continues otherwise.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(UserKey, user)
			}
		}
		return c.Next()
	}
}

// AdminRequired must run after AuthRequired; it rejects non-admins with 403.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			return services.ErrAdminRequired
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}

// MustUser returns the authenticated user or a 401 error when the route was
// not guarded.
func MustUser(c *fiber.Ctx) (*models.User, error) {
	if user := CurrentUser(c); user != nil {
		return user, nil
	}
	return nil, services.ErrMissingToken
}
