package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/pagination"

	"gorm.io/gorm"
)

// EnquiryService handles public lead intake
type EnquiryService struct {
	repo repositories.EnquiryRepository
}

// NewEnquiryService creates a new enquiry service
func NewEnquiryService(repo repositories.EnquiryRepository) *EnquiryService {
	return &EnquiryService{repo: repo}
}

// CreateEnquiryInput represents a public enquiry
type CreateEnquiryInput struct {
	Name    string `json:"name" validate:"required,max=150"`
	Phone   string `json:"phone" validate:"required,max=20"`
	Email   string `json:"email" validate:"omitempty,email,max=100"`
	Service string `json:"service" validate:"max=50"`
	Message string `json:"message" validate:"max=2000"`
}

// ListEnquiriesInput represents list enquiries input
type ListEnquiriesInput struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// ListEnquiriesOutput represents list enquiries output
type ListEnquiriesOutput struct {
	Items      []*models.Enquiry `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// Create records a public enquiry. No authentication is required.
func (s *EnquiryService) Create(ctx context.Context, input *CreateEnquiryInput) (*models.Enquiry, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	enquiry := &models.Enquiry{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Service: strings.TrimSpace(input.Service),
		Message: strings.TrimSpace(input.Message),
		Status:  string(domain.EnquiryPending),
	}
	if err := s.repo.Create(ctx, enquiry); err != nil {
		return nil, err
	}

	log.Printf("📨 Enquiry received: %s", enquiry.ID)
	return enquiry, nil
}

// List lists enquiries (staff)
func (s *EnquiryService) List(ctx context.Context, actor *domain.Principal, input *ListEnquiriesInput) (*ListEnquiriesOutput, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}
	if input.Status != "" && !domain.EnquiryStatus(input.Status).Valid() {
		return nil, domain.NewValidationError("Invalid status")
	}

	params := pagination.New(input.Page, input.Limit)
	items, total, err := s.repo.List(ctx, repositories.EnquiryFilter{
		Search: input.Search,
		Status: input.Status,
		Offset: params.Offset,
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListEnquiriesOutput{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.GetMeta(params, total).TotalPages,
	}, nil
}

// UpdateStatus moves an enquiry between pending and done (staff)
func (s *EnquiryService) UpdateStatus(ctx context.Context, actor *domain.Principal, id, status string) (*models.Enquiry, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}
	if !domain.EnquiryStatus(status).Valid() {
		return nil, domain.NewValidationError("Invalid status")
	}

	enquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("enquiry")
		}
		return nil, err
	}

	enquiry.Status = status
	if err := s.repo.Update(ctx, enquiry); err != nil {
		return nil, err
	}
	return enquiry, nil
}

// Delete removes an enquiry (admin only)
func (s *EnquiryService) Delete(ctx context.Context, actor *domain.Principal, id string) error {
	if err := domain.Authorize(actor, domain.AdminOnly); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError("enquiry")
		}
		return err
	}
	return nil
}
