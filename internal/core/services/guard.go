package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/jwt"

	"gorm.io/gorm"
)

// VerifiedToken is what a credential verifier extracts from a bearer token
type VerifiedToken struct {
	PrincipalID string
	Role        domain.Role
	ExpiresAt   time.Time
}

// TokenVerifier checks signature and expiry of a bearer token
type TokenVerifier interface {
	Verify(token string) (*VerifiedToken, error)
}

// PrincipalLookup fetches the current state of a principal
type PrincipalLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// JWTVerifier verifies HS256 access tokens signed with a shared secret
type JWTVerifier struct {
	secret string
}

// NewJWTVerifier creates a verifier for the given secret
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify implements TokenVerifier
func (v *JWTVerifier) Verify(token string) (*VerifiedToken, error) {
	claims, err := jwt.ValidateAccessToken(token, v.secret)
	if err != nil {
		return nil, err
	}

	verified := &VerifiedToken{
		PrincipalID: claims.UserID,
		Role:        domain.Role(claims.Role),
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}
	return verified, nil
}

// AccessGuard authenticates bearer credentials and authorizes capabilities
type AccessGuard struct {
	verifier TokenVerifier
	lookup   PrincipalLookup
}

// NewAccessGuard creates a new access guard
func NewAccessGuard(verifier TokenVerifier, lookup PrincipalLookup) *AccessGuard {
	return &AccessGuard{
		verifier: verifier,
		lookup:   lookup,
	}
}

// Authenticate resolves the principal behind a bearer token. The role comes
// from the stored principal, not from the token.
func (g *AccessGuard) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	verified, err := g.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidCredential)
	}

	user, err := g.lookup.GetByID(ctx, verified.PrincipalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("principal no longer exists: %w", domain.ErrInvalidCredential)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("principal is inactive: %w", domain.ErrInvalidCredential)
	}

	return user.ToPrincipal(), nil
}

// Authorize checks the principal's role against the capability
func (g *AccessGuard) Authorize(p *domain.Principal, c domain.Capability) error {
	return domain.Authorize(p, c)
}
