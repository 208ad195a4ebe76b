package middleware_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestApp(auth middleware.Authenticator) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(zap.NewNop(), false)})
	whoami := func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		if user == nil {
			return c.JSON(fiber.Map{"user": ""})
		}
		return c.JSON(fiber.Map{"user": user.ID})
	}
	app.Get("/required", middleware.AuthRequired(auth), whoami)
	app.Get("/optional", middleware.OptionalAuth(auth), whoami)
	app.Get("/admin", middleware.AuthRequired(auth), middleware.AdminRequired(), whoami)
	return app
}

func TestAccessGuards(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "").Return(nil, services.ErrMissingToken)
	auth.On("Authenticate", mock.Anything, "user-token").Return(&models.User{ID: "u1", Role: models.RoleUser}, nil)
	auth.On("Authenticate", mock.Anything, "admin-token").Return(&models.User{ID: "a1", Role: models.RoleAdmin}, nil)
	auth.On("Authenticate", mock.Anything, "expired-token").Return(nil, services.ErrExpiredToken)
	auth.On("Authenticate", mock.Anything, "bad-token").Return(nil, services.ErrInvalidToken)

	app := newTestApp(auth)

	tests := []struct {
		name        string
		path        string
		header      string
		wantStatus  int
		wantUser    string
		wantMessage string
	}{
		{"required without header", "/required", "", 401, "", "Access denied. No token provided."},
		{"required with basic scheme", "/required", "Basic user-token", 401, "", "Access denied. No token provided."},
		{"required with valid token", "/required", "Bearer user-token", 200, "u1", ""},
		{"required with expired token", "/required", "Bearer expired-token", 401, "", "Token expired."},
		{"required with invalid token", "/required", "Bearer bad-token", 401, "", "Invalid token."},
		{"optional anonymous", "/optional", "", 200, "", ""},
		{"optional invalid token continues", "/optional", "Bearer bad-token", 200, "", ""},
		{"optional valid token", "/optional", "Bearer user-token", 200, "u1", ""},
		{"admin as user", "/admin", "Bearer user-token", 403, "", "Admin access required."},
		{"admin as admin", "/admin", "Bearer admin-token", 200, "a1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.wantStatus == 200 {
				assert.Equal(t, tt.wantUser, body["user"])
			} else {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.wantMessage, body["message"])
			}
		})
	}
}
