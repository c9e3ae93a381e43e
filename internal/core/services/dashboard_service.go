package services

import (
	"context"
	"time"

	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/core/domain"
)

// ExpiringWindow is how far ahead the dashboard looks for ending subscriptions
const ExpiringWindow = 30 * 24 * time.Hour

// DashboardService handles dashboard operations
type DashboardService struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	enquiryRepo      repositories.EnquiryRepository
	now              func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	enquiryRepo repositories.EnquiryRepository,
) *DashboardService {
	return &DashboardService{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		enquiryRepo:      enquiryRepo,
		now:              time.Now,
	}
}

// DashboardData represents staff dashboard data
type DashboardData struct {
	SubscriptionsByStatus map[string]int64 `json:"subscriptions_by_status"`
	SubscriptionsByPlan   map[string]int64 `json:"subscriptions_by_plan"`
	ExpiringSoon          int64            `json:"expiring_soon"`
	UsersByRole           map[string]int64 `json:"users_by_role"`
	TotalPartners         int64            `json:"total_partners"`
	TotalStaff            int64            `json:"total_staff"`
	PendingEnquiries      int64            `json:"pending_enquiries"`
}

// GetDashboard returns counts for the staff dashboard
func (s *DashboardService) GetDashboard(ctx context.Context, actor *domain.Principal) (*DashboardData, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	data := &DashboardData{}
	var err error

	if data.SubscriptionsByStatus, err = s.subscriptionRepo.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if data.SubscriptionsByPlan, err = s.subscriptionRepo.CountByPlan(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	if data.ExpiringSoon, err = s.subscriptionRepo.CountActiveEndingBetween(ctx, now, now.Add(ExpiringWindow)); err != nil {
		return nil, err
	}

	if data.UsersByRole, err = s.userRepo.CountByRole(ctx); err != nil {
		return nil, err
	}
	for role, count := range data.UsersByRole {
		switch domain.Role(role).Category() {
		case domain.CategoryPartner:
			data.TotalPartners += count
		case domain.CategoryStaff:
			data.TotalStaff += count
		}
	}

	if data.PendingEnquiries, err = s.enquiryRepo.CountByStatus(ctx, string(domain.EnquiryPending)); err != nil {
		return nil, err
	}

	return data, nil
}
