package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/pkg/validator"
)

// parseBody decodes and validates a JSON request body. On failure the 400 response has
// already been written and the returned error is the result of writing it.
func parseBody(c *fiber.Ctx, v *validator.Validator, dest any) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  domain.ErrInvalidParameter.Code,
		})
	}

	if err := v.Validate(dest); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  domain.ErrInvalidParameter.Code,
		})
	}

	return true, nil
}
