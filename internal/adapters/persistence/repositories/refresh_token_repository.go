package repositories

import (
	"context"
	"time"

	"punebus-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// RevokedTokenRetention is how long revoked tokens are kept for auditing
const RevokedTokenRetention = 30 * 24 * time.Hour

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// unrevoked limits a query to tokens that have not been revoked
func unrevoked(db *gorm.DB) *gorm.DB {
	return db.Where("revoked_at IS NULL")
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByTokenHash returns the unrevoked token with the given hash
func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Scopes(unrevoked).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	return r.revoke(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *refreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return r.revoke(r.db.WithContext(ctx).Where("token_hash = ?", tokenHash))
}

// RevokeAllByUserID ends every session of a user
func (r *refreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	return r.revoke(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *refreshTokenRepository) revoke(query *gorm.DB) error {
	return query.Model(&models.RefreshToken{}).
		Scopes(unrevoked).
		Update("revoked_at", time.Now().UTC()).Error
}

// DeleteExpired purges expired tokens and tokens revoked longer ago than RevokedTokenRetention
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", now, now.Add(-RevokedTokenRetention)).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
