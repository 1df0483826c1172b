package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func SetupRoutes(
	app *fiber.App,
	tokenHandler *TokenHandler,
	domainHandler *DomainHandler,
	jwksHandler *JWKSHandler,
	healthHandler *HealthHandler,
	metricsHandler http.Handler,
	rateLimit fiber.Handler,
) {
	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))

	// API v1
	api := app.Group("/api/v1")

	// Token protocols (rate limited per client)
	token := api.Group("/token", rateLimit)
	token.Post("/issue", tokenHandler.Issue)
	token.Post("/grant", tokenHandler.Grant)

	// Domain discovery (public)
	domains := api.Group("/domains")
	domains.Get("/auth-info", domainHandler.GetAuthInfo)
	domains.Get("/:domain_id/jwks", jwksHandler.GetJWKS)
}
