package handlers

import (
	"punebus-backend/internal/adapters/http/middleware"
	"punebus-backend/internal/core/services"
	"punebus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns staff dashboard data
// @Summary Dashboard
// @Description Subscription, user and enquiry counts for staff
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetDashboard(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return handleError(c, err, "")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
