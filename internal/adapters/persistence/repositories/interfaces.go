package repositories

import (
	"context"
	"time"

	"punebus-backend/internal/adapters/persistence/models"
)

// UserFilter narrows user listings
type UserFilter struct {
	Search   string
	Roles    []string
	IsActive *bool
	Offset   int
	Limit    int
}

// SubscriptionFilter narrows subscription listings.
// SortField is one of the keys of subscriptionSortColumns.
type SubscriptionFilter struct {
	Search    string
	Plan      string
	Status    string
	Offset    int
	Limit     int
	SortField string
	SortOrder string
}

// EnquiryFilter narrows enquiry listings
type EnquiryFilter struct {
	Search string
	Status string
	Offset int
	Limit  int
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// SubscriptionRepository defines subscription repository interface
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter SubscriptionFilter) ([]*models.Subscription, int64, error)
	ExpireEndedBefore(ctx context.Context, day time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByPlan(ctx context.Context) (map[string]int64, error)
	CountActiveEndingBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// EnquiryRepository defines enquiry repository interface
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *models.Enquiry) error
	GetByID(ctx context.Context, id string) (*models.Enquiry, error)
	Update(ctx context.Context, enquiry *models.Enquiry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EnquiryFilter) ([]*models.Enquiry, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}
