package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PrincipalKey is the fiber.Locals key holding the authenticated *domain.Principal
const PrincipalKey = "principal"

// Authenticator resolves a bearer credential to an active principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// extractToken reads the access token from the cookie, then the Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(guard Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		principal, err := guard.Authenticate(c.UserContext(), accessToken)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthenticated):
				return response.Unauthorized(c, "Access token required")
			case errors.Is(err, domain.ErrInvalidCredential):
				return response.Unauthorized(c, "Invalid access token")
			default:
				log.Printf("❌ Authentication failed: %v", err)
				return response.InternalServerError(c, "Internal server error")
			}
		}

		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

// RequireCapability rejects principals whose role does not grant the capability
func RequireCapability(capability domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := domain.Authorize(Principal(c), capability); err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return response.Unauthorized(c, "Access token required")
			}
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RequireCapability(domain.AdminOnly)
}

// StaffOrAdmin middleware allows admin and every staff role
func StaffOrAdmin() fiber.Handler {
	return RequireCapability(domain.StaffOrAdmin)
}

// Principal returns the authenticated principal, or nil
func Principal(c *fiber.Ctx) *domain.Principal {
	p, _ := c.Locals(PrincipalKey).(*domain.Principal)
	return p
}
