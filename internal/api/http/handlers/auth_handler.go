package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/service"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// AuthHandler exposes the login endpoint and the identity probe.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/user/login. The endpoint always answers 200;
// the body's success flag carries the verdict.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(dto.LoginResponse{Message: service.MessageGenericFailure})
	}

	result := h.auth.Login(c.UserContext(), req.Email, req.Password)
	return c.JSON(dto.LoginResponse{
		Success: result.Success,
		Message: result.Message,
		Token:   result.Token,
	})
}

// Me handles GET /api/user/me, returning the identity asserted by the
// presented bearer token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"id":    principal.User.ID,
			"name":  principal.User.Name,
			"email": principal.User.Email,
		},
	})
}
