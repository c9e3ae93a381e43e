package repositories

import (
	"context"
	"strings"

	"punebus-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// enquiryRepository implements EnquiryRepository interface
type enquiryRepository struct {
	db *gorm.DB
}

// NewEnquiryRepository creates a new enquiry repository
func NewEnquiryRepository(db *gorm.DB) EnquiryRepository {
	return &enquiryRepository{db: db}
}

func (r *enquiryRepository) Create(ctx context.Context, enquiry *models.Enquiry) error {
	return r.db.WithContext(ctx).Create(enquiry).Error
}

func (r *enquiryRepository) GetByID(ctx context.Context, id string) (*models.Enquiry, error) {
	var enquiry models.Enquiry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&enquiry).Error
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func (r *enquiryRepository) Update(ctx context.Context, enquiry *models.Enquiry) error {
	return r.db.WithContext(ctx).Save(enquiry).Error
}

func (r *enquiryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Enquiry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *enquiryRepository) List(ctx context.Context, filter EnquiryFilter) ([]*models.Enquiry, int64, error) {
	var enquiries []*models.Enquiry
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Enquiry{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&enquiries).Error; err != nil {
		return nil, 0, err
	}

	return enquiries, total, nil
}

func (r *enquiryRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enquiry{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
