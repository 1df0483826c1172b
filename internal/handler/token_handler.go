package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/service"
	"github.com/andressep95/identity-service/pkg/validator"
)

// TokenIssuer is the token protocol surface served over HTTP
type TokenIssuer interface {
	Issue(ctx context.Context, req service.IssueRequest) (*domain.TokenPair, error)
	Grant(ctx context.Context, req service.GrantRequest) (*domain.GrantResult, error)
}

type TokenHandler struct {
	tokens    TokenIssuer
	validator *validator.Validator
}

// IssueTokenRequest carries the credential. Timeout is the requested access token lifetime
// in seconds; 0 selects the domain default.
type IssueTokenRequest struct {
	DomainID    string            `json:"domain_id" validate:"required"`
	AuthType    string            `json:"auth_type" validate:"required"`
	Credentials map[string]string `json:"credentials" validate:"required"`
	Timeout     int               `json:"timeout" validate:"gte=0"`
	VerifyCode  string            `json:"verify_code"`
}

// GrantTokenRequest leaves the workspace rules to the token service so a missing workspace id
// surfaces as ERROR_REQUIRED_PARAMETER.
type GrantTokenRequest struct {
	GrantType   string `json:"grant_type" validate:"required,oneof=REFRESH_TOKEN ACCESS_TOKEN"`
	Token       string `json:"token" validate:"required"`
	Scope       string `json:"scope" validate:"required,oneof=SYSTEM DOMAIN WORKSPACE USER"`
	WorkspaceID string `json:"workspace_id"`
	Timeout     int    `json:"timeout" validate:"gte=0"`
}

func NewTokenHandler(tokens TokenIssuer, validator *validator.Validator) *TokenHandler {
	return &TokenHandler{
		tokens:    tokens,
		validator: validator,
	}
}

// Issue authenticates a credential and returns an access/refresh pair
// POST /api/v1/token/issue
func (h *TokenHandler) Issue(c *fiber.Ctx) error {
	var req IssueTokenRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	pair, err := h.tokens.Issue(c.UserContext(), service.IssueRequest{
		DomainID:    req.DomainID,
		AuthType:    domain.AuthType(req.AuthType),
		Credentials: req.Credentials,
		Timeout:     time.Duration(req.Timeout) * time.Second,
		VerifyCode:  req.VerifyCode,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(pair)
}

// Grant exchanges a token for a scoped access token
// POST /api/v1/token/grant
func (h *TokenHandler) Grant(c *fiber.Ctx) error {
	var req GrantTokenRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.tokens.Grant(c.UserContext(), service.GrantRequest{
		GrantType:   domain.TokenType(req.GrantType),
		Token:       req.Token,
		Scope:       domain.Scope(req.Scope),
		WorkspaceID: req.WorkspaceID,
		Timeout:     time.Duration(req.Timeout) * time.Second,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
