package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/pagination"
	"punebus-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

// SubscriptionService owns the subscription lifecycle
type SubscriptionService struct {
	repo  repositories.SubscriptionRepository
	plans domain.PlanCatalog
	now   func() time.Time
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo repositories.SubscriptionRepository, plans domain.PlanCatalog) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		plans: plans,
		now:   time.Now,
	}
}

// CreateSubscriptionInput represents create subscription input
type CreateSubscriptionInput struct {
	Name           string     `json:"name" validate:"required"`
	Phone          string     `json:"phone" validate:"required"`
	Email          string     `json:"email" validate:"omitempty,email"`
	Plan           string     `json:"plan"`
	DurationMonths *int       `json:"durationMonths" validate:"required"`
	StartDate      *time.Time `json:"startDate" validate:"required"`
	EndDate        *time.Time `json:"endDate"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes"`
}

// UpdateSubscriptionInput is a patch: nil fields are left untouched
type UpdateSubscriptionInput struct {
	Name           *string
	Phone          *string
	Email          *string
	Plan           *string
	DurationMonths *int
	StartDate      *time.Time
	EndDate        *time.Time
	Status         *string
	Notes          *string
}

// ListSubscriptionsInput represents list subscriptions input
type ListSubscriptionsInput struct {
	Search    string
	Plan      string
	Status    string
	Page      int
	PageSize  int
	SortField string
	SortOrder string
}

// ListSubscriptionsOutput represents list subscriptions output
type ListSubscriptionsOutput struct {
	Items      []*models.Subscription `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// Create validates and persists a new subscription on behalf of creator
func (s *SubscriptionService) Create(ctx context.Context, creator *domain.Principal, input *CreateSubscriptionInput) (*models.Subscription, error) {
	if err := domain.Authorize(creator, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	plan := domain.Plan(strings.TrimSpace(input.Plan))
	if plan == "" {
		plan = domain.DefaultPlan
	}
	months := *input.DurationMonths
	if err := s.plans.ValidatePlanDuration(plan, months); err != nil {
		return nil, err
	}

	status := domain.StatusActive
	if input.Status != "" {
		status = domain.SubscriptionStatus(input.Status)
		if !status.Valid() {
			return nil, domain.NewValidationError("Invalid status")
		}
	}
	// Sales staff may only file subscriptions for approval.
	if creator.Role == domain.RoleSales {
		status = domain.StatusPending
	}

	endDate := domain.ComputeEndDate(*input.StartDate, months)
	if input.EndDate != nil {
		endDate = *input.EndDate
	}

	sub := &models.Subscription{
		Name:           input.Name,
		Phone:          input.Phone,
		Email:          input.Email,
		Plan:           string(plan),
		DurationMonths: months,
		StartDate:      *input.StartDate,
		EndDate:        endDate,
		Status:         string(status),
		Notes:          input.Notes,
		CreatedBy:      creator.ID,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	log.Printf("✅ Subscription created: %s (%s, %d months) by %s", sub.ID, sub.Plan, sub.DurationMonths, creator.ID)
	return sub, nil
}

// Get returns a subscription by ID
func (s *SubscriptionService) Get(ctx context.Context, actor *domain.Principal, id string) (*models.Subscription, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Update applies a patch. Plan and duration are re-validated against their
// effective values whenever either is touched, and the end date follows:
// explicit endDate, else recompute from whichever of startDate/duration
// changed combined with the stored other one, else unchanged.
func (s *SubscriptionService) Update(ctx context.Context, actor *domain.Principal, id string, patch *UpdateSubscriptionInput) (*models.Subscription, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.NewValidationError("name cannot be empty")
		}
		sub.Name = name
	}
	if patch.Phone != nil {
		phone := strings.TrimSpace(*patch.Phone)
		if phone == "" {
			return nil, domain.NewValidationError("phone cannot be empty")
		}
		sub.Phone = phone
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email != "" && validation.Validator().Var(email, "email") != nil {
			return nil, domain.NewValidationError("Invalid email format")
		}
		sub.Email = email
	}
	if patch.Notes != nil {
		sub.Notes = *patch.Notes
	}

	if patch.Plan != nil || patch.DurationMonths != nil {
		plan := domain.Plan(sub.Plan)
		if patch.Plan != nil {
			plan = domain.Plan(strings.TrimSpace(*patch.Plan))
		}
		months := sub.DurationMonths
		if patch.DurationMonths != nil {
			months = *patch.DurationMonths
		}
		if err := s.plans.ValidatePlanDuration(plan, months); err != nil {
			return nil, err
		}
		sub.Plan = string(plan)
		sub.DurationMonths = months
	}

	if patch.Status != nil {
		status := domain.SubscriptionStatus(*patch.Status)
		if !status.Valid() {
			return nil, domain.NewValidationError("Invalid status")
		}
		sub.Status = string(status)
	}

	if patch.StartDate != nil {
		sub.StartDate = *patch.StartDate
	}
	switch {
	case patch.EndDate != nil:
		sub.EndDate = *patch.EndDate
	case patch.StartDate != nil || patch.DurationMonths != nil:
		// sub already carries the patched value of whichever field was supplied
		sub.EndDate = domain.ComputeEndDate(sub.StartDate, sub.DurationMonths)
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	log.Printf("✅ Subscription updated: %s by %s", sub.ID, actor.ID)
	return sub, nil
}

// Delete permanently removes a subscription (admin only)
func (s *SubscriptionService) Delete(ctx context.Context, actor *domain.Principal, id string) error {
	if err := domain.Authorize(actor, domain.AdminOnly); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError("subscription")
		}
		return err
	}

	log.Printf("🗑️ Subscription deleted: %s by %s", id, actor.ID)
	return nil
}

// List returns a filtered, sorted page of subscriptions
func (s *SubscriptionService) List(ctx context.Context, actor *domain.Principal, input *ListSubscriptionsInput) (*ListSubscriptionsOutput, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	params := pagination.New(input.Page, input.PageSize)
	sortField := input.SortField
	if !repositories.IsSubscriptionSortField(sortField) {
		sortField = repositories.DefaultSubscriptionSort
	}

	items, total, err := s.repo.List(ctx, repositories.SubscriptionFilter{
		Search:    input.Search,
		Plan:      input.Plan,
		Status:    input.Status,
		Offset:    params.Offset,
		Limit:     params.Limit,
		SortField: sortField,
		SortOrder: input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	return &ListSubscriptionsOutput{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.GetMeta(params, total).TotalPages,
	}, nil
}

// ExpireLapsed marks active subscriptions that ended before today as expired
func (s *SubscriptionService) ExpireLapsed(ctx context.Context) (int64, error) {
	y, m, d := s.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return s.repo.ExpireEndedBefore(ctx, today)
}

// Plans returns the plan catalog the service validates against
func (s *SubscriptionService) Plans() domain.PlanCatalog {
	return s.plans
}

func (s *SubscriptionService) find(ctx context.Context, id string) (*models.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("subscription")
		}
		return nil, err
	}
	return sub, nil
}

// validateStruct runs struct-tag validation and converts failures to domain errors
func validateStruct(v interface{}) error {
	err := validation.Struct(v)
	if err == nil {
		return nil
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		if len(verr.Missing) > 0 {
			return domain.MissingFieldsError(verr.Missing)
		}
		return domain.NewValidationError("%s", verr.Message)
	}
	return err
}
