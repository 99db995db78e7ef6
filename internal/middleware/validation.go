package middleware

import (
	"omr-eval/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const BatchIDKey = "validated_batch_id"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateBatchParam rejects malformed :batchID path parameters before any
// handler runs.
func (vm *ValidationMiddleware) ValidateBatchParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		batchID := c.Params("batchID")
		if errs := vm.validator.ValidateBatchID(batchID); len(errs) > 0 {
			return errs
		}
		c.Locals(BatchIDKey, batchID)
		return c.Next()
	}
}

// BatchID returns the validated batch ID.
func BatchID(c *fiber.Ctx) string {
	id, _ := c.Locals(BatchIDKey).(string)
	return id
}
