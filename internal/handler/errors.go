package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/handler/middleware"
)

// statusFor maps the error taxonomy to an HTTP status. Order matters: a key lookup failure
// wraps ErrNotFound and a denied workspace wraps its cause.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMFARequired):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrKeyUnavailable),
		errors.Is(err, domain.ErrMFADeliveryFailed):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrAuthenticationFailure),
		errors.Is(err, domain.ErrInvalidMFACode):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrDomainDisabled),
		errors.Is(err, domain.ErrWorkspaceDisabled):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrMissingParameter),
		errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrInvalidGrantType),
		errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrUnsupportedAuthType),
		errors.Is(err, domain.ErrUnsupportedMFAType):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrRoleNotFound),
		errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as {"error", "code"}. Only taxonomy messages reach the caller:
// 401 and 403 carry the bare sentinel message so a refusal never says which check failed,
// and errors outside the taxonomy are reported generically. The full chain is logged.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	body := fiber.Map{
		"error": err.Error(),
		"code":  domain.ErrorCode(err),
	}

	var mfaErr *domain.MFARequiredError
	if errors.As(err, &mfaErr) {
		body["error"] = domain.ErrMFARequired.Message
		body["destination"] = mfaErr.Destination
		return c.Status(status).JSON(body)
	}

	switch status {
	case fiber.StatusUnauthorized, fiber.StatusForbidden:
		log.Printf("[HANDLER] %s %s refused with %d (request %v): %v", c.Method(), c.Path(), status, c.Locals(middleware.RequestIDKey), err)
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			body["error"] = domainErr.Message
		}
	case fiber.StatusInternalServerError:
		log.Printf("[HANDLER] %s %s failed (request %v): %v", c.Method(), c.Path(), c.Locals(middleware.RequestIDKey), err)
		body["error"] = "internal server error"
	}

	return c.Status(status).JSON(body)
}
