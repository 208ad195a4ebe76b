package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"marketplace/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTagListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"array", `["desk", "light"]`, []string{"desk", "light"}, false},
		{"comma string", `"desk, light ,,desk"`, []string{"desk", "light"}, false},
		{"empty string", `""`, []string{}, false},
		{"number", `42`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags tagList
			err := json.Unmarshal([]byte(tt.input), &tags)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, []string(tags))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	newApp := func(expose bool) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop(), expose)})
		app.Get("/internal", func(c *fiber.Ctx) error {
			return apperrors.Internal("Failed to fetch products", errors.New("disk on fire"))
		})
		app.Get("/conflict", func(c *fiber.Ctx) error {
			return apperrors.Conflict("Product already in favorites")
		})
		app.Get("/plain", func(c *fiber.Ctx) error {
			return errors.New("unexpected")
		})
		app.Use(NotFound)
		return app
	}

	tests := []struct {
		name        string
		expose      bool
		path        string
		wantStatus  int
		wantMessage string
		wantDetail  string
	}{
		{"internal with details", true, "/internal", 500, "Failed to fetch products", "disk on fire"},
		{"internal in production", false, "/internal", 500, "Failed to fetch products", ""},
		{"conflict", false, "/conflict", 409, "Product already in favorites", ""},
		{"plain error", true, "/plain", 500, "Internal server error", "unexpected"},
		{"plain error in production", false, "/plain", 500, "Internal server error", ""},
		{"unknown route", false, "/missing", 404, "Route not found", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newApp(tt.expose).Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body Envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantDetail, body.Error)
		})
	}
}
