package handler

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"math/big"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/identity-service/internal/service"
)

// DomainDirectory resolves per-domain public information
type DomainDirectory interface {
	GetAuthInfo(ctx context.Context, name string) (*service.DomainAuthInfo, error)
	PublicKey(ctx context.Context, domainID string) (*rsa.PublicKey, error)
}

type JWKSHandler struct {
	domains DomainDirectory
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

type JWK struct {
	Kty string `json:"kty"` // Key Type
	Use string `json:"use"` // Public Key Use
	Kid string `json:"kid"` // Key ID
	Alg string `json:"alg"` // Algorithm
	N   string `json:"n"`   // Modulus
	E   string `json:"e"`   // Exponent
}

func NewJWKSHandler(domains DomainDirectory) *JWKSHandler {
	return &JWKSHandler{domains: domains}
}

// GetJWKS publishes the access token verification key of a domain. The key id is the
// domain id.
// GET /api/v1/domains/:domain_id/jwks
func (h *JWKSHandler) GetJWKS(c *fiber.Ctx) error {
	domainID := c.Params("domain_id")

	pub, err := h.domains.PublicKey(c.UserContext(), domainID)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(JWKS{Keys: []JWK{toJWK(domainID, pub)}})
}

func toJWK(kid string, pub *rsa.PublicKey) JWK {
	return JWK{
		Kty: "RSA",
		Use: "sig",
		Kid: kid,
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}
