package repositories

import (
	"context"
	"strings"
	"time"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/core/domain"

	"gorm.io/gorm"
)

// subscriptionSortColumns whitelists sortable fields (API name -> column)
var subscriptionSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"startDate": "start_date",
	"endDate":   "end_date",
	"plan":      "plan",
	"status":    "status",
}

// DefaultSubscriptionSort is applied when no valid sort field is given
const DefaultSubscriptionSort = "createdAt"

// IsSubscriptionSortField reports whether field is sortable
func IsSubscriptionSortField(field string) bool {
	_, ok := subscriptionSortColumns[field]
	return ok
}

// subscriptionRepository implements SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription
func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// GetByID gets a subscription by ID
func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Update saves all fields of a subscription (last write wins)
func (r *subscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// Delete permanently deletes a subscription
func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List lists subscriptions with filters, sorting and pagination
func (r *subscriptionRepository) List(ctx context.Context, filter SubscriptionFilter) ([]*models.Subscription, int64, error) {
	var subs []*models.Subscription
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Subscription{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if filter.Plan != "" {
		query = query.Where("plan = ?", filter.Plan)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := subscriptionSortColumns[filter.SortField]
	if !ok {
		column = subscriptionSortColumns[DefaultSubscriptionSort]
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	err := query.Order(column + " " + direction).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// ExpireEndedBefore marks active subscriptions whose end date is before day as expired
func (r *subscriptionRepository) ExpireEndedBefore(ctx context.Context, day time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("status = ?", string(domain.StatusActive)).
		Where("end_date < ?", day).
		Update("status", string(domain.StatusExpired))
	return result.RowsAffected, result.Error
}

// CountByStatus counts subscriptions grouped by status
func (r *subscriptionRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&models.Subscription{}), "status")
}

// CountByPlan counts subscriptions grouped by plan
func (r *subscriptionRepository) CountByPlan(ctx context.Context) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&models.Subscription{}), "plan")
}

// CountActiveEndingBetween counts active subscriptions ending in [from, to)
func (r *subscriptionRepository) CountActiveEndingBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("status = ?", string(domain.StatusActive)).
		Where("end_date >= ? AND end_date < ?", from, to).
		Count(&count).Error
	return count, err
}
