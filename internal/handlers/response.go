package handlers

import (
	"errors"

	"marketplace/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// ErrorHandler renders errors returned by handlers and middleware as
// envelopes. Internal details are included only when exposeDetails is set.
func ErrorHandler(logger *zap.Logger, exposeDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperrors.StatusCode(err)
		body := Envelope{Success: false, Message: "Internal server error"}

		var appErr *apperrors.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			body.Message = appErr.Message
			if exposeDetails && appErr.Err != nil {
				body.Error = appErr.Err.Error()
			}
		case errors.As(err, &fiberErr):
			body.Message = fiberErr.Message
		default:
			if exposeDetails {
				body.Error = err.Error()
			}
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(body)
	}
}

// NotFound answers requests that matched no route.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(Envelope{Success: false, Message: "Route not found"})
}

// Guards bundles the access middleware handlers attach to their routes.
type Guards struct {
	Required fiber.Handler
	Optional fiber.Handler
	Admin    fiber.Handler
}
