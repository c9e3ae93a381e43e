package handlers

import (
	"time"

	"punebus-backend/internal/adapters/http/middleware"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/core/services"
	"punebus-backend/internal/pkg/pagination"
	"punebus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SubscriptionHandler handles subscription endpoints
type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// CreateSubscriptionRequest represents create subscription request body.
// durationMonths accepts a number or a numeric string.
type CreateSubscriptionRequest struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	Plan           string         `json:"plan"`
	DurationMonths *domain.Months `json:"durationMonths" swaggertype:"integer"`
	StartDate      *string        `json:"startDate" example:"2025-01-15"`
	EndDate        *string        `json:"endDate"`
	Status         string         `json:"status"`
	Notes          string         `json:"notes"`
}

// UpdateSubscriptionRequest represents update subscription request body.
// Omitted or null fields are left unchanged.
type UpdateSubscriptionRequest struct {
	Name           *string        `json:"name"`
	Phone          *string        `json:"phone"`
	Email          *string        `json:"email"`
	Plan           *string        `json:"plan"`
	DurationMonths *domain.Months `json:"durationMonths" swaggertype:"integer"`
	StartDate      *string        `json:"startDate"`
	EndDate        *string        `json:"endDate"`
	Status         *string        `json:"status"`
	Notes          *string        `json:"notes"`
}

// Create handles subscription creation
// @Summary Create subscription
// @Description Create a subscription. The end date is derived from the start date and duration unless given.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSubscriptionRequest true "Subscription data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	var req CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	startDate, err := optionalDate("startDate", req.StartDate)
	if err != nil {
		return handleError(c, err, "")
	}
	endDate, err := optionalDate("endDate", req.EndDate)
	if err != nil {
		return handleError(c, err, "")
	}

	input := &services.CreateSubscriptionInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Plan:           req.Plan,
		DurationMonths: monthsPtr(req.DurationMonths),
		StartDate:      startDate,
		EndDate:        endDate,
		Status:         req.Status,
		Notes:          req.Notes,
	}

	sub, err := h.subscriptionService.Create(c.UserContext(), middleware.Principal(c), input)
	if err != nil {
		return handleError(c, err, "")
	}

	return response.Created(c, "Subscription created successfully", sub)
}

// List handles listing subscriptions
// @Summary List subscriptions
// @Description Search, filter, sort and paginate subscriptions
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of name, phone or email"
// @Param plan query string false "Plan" Enums(Gold, Silver, Platinum)
// @Param status query string false "Status" Enums(pending, active, inactive, expired)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param sortField query string false "Sort field" Enums(createdAt, name, startDate, endDate, plan, status)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /subscriptions [get]
func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListSubscriptionsInput{
		Search:    c.Query("search"),
		Plan:      c.Query("plan"),
		Status:    c.Query("status"),
		Page:      params.Page,
		PageSize:  params.Limit,
		SortField: c.Query("sortField"),
		SortOrder: c.Query("sortOrder"),
	}

	result, err := h.subscriptionService.List(c.UserContext(), middleware.Principal(c), input)
	if err != nil {
		return handleError(c, err, "")
	}

	return response.Success(c, "Subscriptions retrieved successfully", result)
}

// Get handles getting a subscription by ID
// @Summary Get subscription
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	sub, err := h.subscriptionService.Get(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err, "Subscription not found")
	}

	return response.Success(c, "Subscription retrieved successfully", sub)
}

// Update handles partial subscription updates
// @Summary Update subscription
// @Description Patch a subscription. The end date is recomputed when start date or duration changes, unless endDate is given.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param body body UpdateSubscriptionRequest true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /subscriptions/{id} [put]
// @Router /subscriptions/{id} [patch]
func (h *SubscriptionHandler) Update(c *fiber.Ctx) error {
	var req UpdateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	startDate, err := optionalDate("startDate", req.StartDate)
	if err != nil {
		return handleError(c, err, "")
	}
	endDate, err := optionalDate("endDate", req.EndDate)
	if err != nil {
		return handleError(c, err, "")
	}

	patch := &services.UpdateSubscriptionInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Plan:           req.Plan,
		DurationMonths: monthsPtr(req.DurationMonths),
		StartDate:      startDate,
		EndDate:        endDate,
		Status:         req.Status,
		Notes:          req.Notes,
	}

	sub, err := h.subscriptionService.Update(c.UserContext(), middleware.Principal(c), c.Params("id"), patch)
	if err != nil {
		return handleError(c, err, "Subscription not found")
	}

	return response.Success(c, "Subscription updated successfully", sub)
}

// Delete handles subscription deletion (Admin only)
// @Summary Delete subscription
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *fiber.Ctx) error {
	if err := h.subscriptionService.Delete(c.UserContext(), middleware.Principal(c), c.Params("id")); err != nil {
		return handleError(c, err, "Subscription not found")
	}

	return response.Success(c, "Subscription deleted successfully", nil)
}

// PlanOption is one entry of the plan catalog
type PlanOption struct {
	Plan      string `json:"plan"`
	Durations []int  `json:"durations"`
	Default   bool   `json:"default"`
}

// Plans returns the plan catalog
// @Summary List plans
// @Description Plans and their allowed durations in months
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} response.Response{data=[]PlanOption}
// @Router /plans [get]
func (h *SubscriptionHandler) Plans(c *fiber.Ctx) error {
	catalog := h.subscriptionService.Plans()

	options := make([]PlanOption, 0, len(catalog))
	for _, plan := range catalog.Plans() {
		options = append(options, PlanOption{
			Plan:      string(plan),
			Durations: catalog[plan],
			Default:   plan == domain.DefaultPlan,
		})
	}

	return response.Success(c, "Plans retrieved successfully", options)
}

// optionalDate parses a date field; nil or blank means not supplied
func optionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func monthsPtr(m *domain.Months) *int {
	if m == nil {
		return nil
	}
	n := int(*m)
	return &n
}
