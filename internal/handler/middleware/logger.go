package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// LoggerMiddleware tags each request with an id and logs its outcome. An incoming
// X-Request-ID is kept so callers can correlate their own logs.
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDHeader, requestID)

		err := c.Next()

		log.Printf("[HTTP] %s %s - %d in %v (request %s)",
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			time.Since(start),
			requestID,
		)

		return err
	}
}
