package handler

import (
	"github.com/gofiber/fiber/v2"
)

type DomainHandler struct {
	domains DomainDirectory
}

func NewDomainHandler(domains DomainDirectory) *DomainHandler {
	return &DomainHandler{domains: domains}
}

// GetAuthInfo tells a login client which domain id and auth backends a domain name maps to
// GET /api/v1/domains/auth-info?name=
func (h *DomainHandler) GetAuthInfo(c *fiber.Ctx) error {
	info, err := h.domains.GetAuthInfo(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(info)
}
