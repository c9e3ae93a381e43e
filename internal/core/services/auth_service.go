package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/config"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/jwt"
	"punebus-backend/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// RegisterInput represents public self-registration input
type RegisterInput struct {
	Name          string `json:"name" validate:"required,max=150"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Email         string `json:"email" validate:"omitempty,email,max=100"`
	Password      string `json:"password"`
	Role          string `json:"role" validate:"required"`
	City          string `json:"city" validate:"max=100"`
	Address       string `json:"address"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register creates a partner principal. Staff roles cannot self-register.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	role := domain.Role(input.Role)
	if !role.Valid() {
		return nil, domain.NewValidationError("Invalid role")
	}
	if !role.IsPartner() {
		return nil, domain.NewValidationError("Role %s cannot self-register", role)
	}

	user := &models.User{
		Name:          input.Name,
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		Phone:         input.Phone,
		Role:          string(role),
		City:          strings.TrimSpace(input.City),
		Address:       strings.TrimSpace(input.Address),
		IsActive:      true,
	}
	if err := setCredential(ctx, s.userRepo, user, input.Email, input.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Partner registered: %s (%s)", user.Name, user.Role)
	return user.ToResponse(), nil
}

// setCredential sets email and password hash on user after uniqueness and
// strength checks. A password without an email is rejected.
func setCredential(ctx context.Context, repo repositories.UserRepository, user *models.User, email, plain string) error {
	if email == "" {
		if plain != "" {
			return domain.NewValidationError("email is required when a password is set")
		}
		return nil
	}
	if !password.ValidatePassword(plain) {
		return domain.NewValidationError("password must be at least %d characters", password.MinLength)
	}

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return domain.ConflictError("email already in use")
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}
	user.Email = &email
	user.Password = hashed
	return nil
}

// Login authenticates a principal by email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}

	if !user.IsActive || !user.HasCredential() {
		return nil, domain.ErrInvalidCredential
	}
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredential
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s (%s)", user.ID, user.Role)
	return resp, nil
}

// RefreshToken rotates a refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %v: %w", err, domain.ErrInvalidCredential)
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token unknown or revoked: %w", domain.ErrInvalidCredential)
		}
		return nil, err
	}
	if storedToken.IsRevoked() || storedToken.IsExpired() {
		return nil, fmt.Errorf("refresh token revoked or expired: %w", domain.ErrInvalidCredential)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredential
	}

	// Token rotation
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.ID)
	return resp, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user: %s", userID)
	return nil
}

// issue generates a token pair and stores the refresh token hash
func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Name,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.NewString(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	token := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	if err := s.refreshTokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
