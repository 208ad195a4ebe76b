package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), 400},
		{Unauthorized("who"), 401},
		{Forbidden("no"), 403},
		{NotFound("gone"), 404},
		{Conflict("dup"), 409},
		{Internal("boom", errors.New("db down")), 500},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), 404},
		{fiber.NewError(fiber.StatusTooManyRequests, "slow down"), 429},
		{errors.New("plain"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("Failed to fetch products", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to fetch products: db down", err.Error())
}

func TestFromValidator(t *testing.T) {
	type input struct {
		Name  string `validate:"required"`
		Price int    `validate:"gte=0"`
	}
	err := FromValidator(validator.New().Struct(input{Price: -1}))
	assert.Equal(t, 400, StatusCode(err))
	assert.Equal(t, "Name is required; Price cannot be negative", err.Error())

	err = FromValidator(errors.New("not a validation error"))
	assert.Equal(t, 400, StatusCode(err))
}
