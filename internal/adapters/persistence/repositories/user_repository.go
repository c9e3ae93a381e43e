package repositories

import (
	"context"
	"errors"
	"strings"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/core/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return emailConflict(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return emailConflict(r.db.WithContext(ctx).Save(user).Error)
}

// Delete soft deletes a user
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}

// List lists users with filters and pagination, newest first
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?", like, like, like)
	}
	if len(filter.Roles) > 0 {
		query = query.Where("role IN ?", filter.Roles)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByEmail checks if email is taken. Soft-deleted users still hold
// their row in the unique index, so they count.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// emailConflict maps a unique violation to a conflict. The email index is the
// only unique key besides the generated primary key. Requires TranslateError.
func emailConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ConflictError("email already in use")
	}
	return err
}

// CountByRole counts users grouped by role
func (r *userRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&models.User{}), "role")
}

type groupCount struct {
	GroupKey string
	Total    int64
}

// countGrouped runs SELECT column, COUNT(*) ... GROUP BY column
func countGrouped(query *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupCount
	err := query.Select(column + " AS group_key, COUNT(*) AS total").Group(column).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupKey] = row.Total
	}
	return counts, nil
}
