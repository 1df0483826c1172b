package middleware

import (
	"log"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// RecoveryMiddleware recovers from panics and returns 500 error
func RecoveryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[RECOVERY] PANIC %s %s (request %v): %v\n%s", c.Method(), c.Path(), c.Locals(RequestIDKey), r, debug.Stack())

				// The panic value may carry credentials, keep it out of the response
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
					"code":  "ERROR_UNKNOWN",
				})
			}
		}()

		return c.Next()
	}
}
