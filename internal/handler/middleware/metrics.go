package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/identity-service/internal/metrics"
)

// MetricsMiddleware records request counts and latencies labelled by route pattern, so path
// parameters such as domain ids do not explode label cardinality.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		done := m.TrackRequest()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		done(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
