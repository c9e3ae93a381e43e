package handlers

import (
	"errors"
	"log"
	"strings"

	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// handleError maps a domain error kind to its HTTP response.
// notFound is the message used for ErrNotFound.
func handleError(c *fiber.Ctx, err error, notFound string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.BadRequest(c, verr.Message)
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, kindDetail(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrUnauthenticated):
		return response.Unauthorized(c, "Access token required")
	case errors.Is(err, domain.ErrInvalidCredential):
		return response.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to access this resource")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, notFound)
	case errors.Is(err, domain.ErrConflict):
		return response.Conflict(c, kindDetail(err, domain.ErrConflict))
	default:
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return response.InternalServerError(c, "Internal server error")
	}
}

// kindDetail strips the trailing ": <kind>" from a wrapped error message
func kindDetail(err, kind error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+kind.Error())
	if msg == "" {
		return kind.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
