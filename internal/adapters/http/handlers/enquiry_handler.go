package handlers

import (
	"punebus-backend/internal/adapters/http/middleware"
	"punebus-backend/internal/core/services"
	"punebus-backend/internal/pkg/pagination"
	"punebus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EnquiryHandler handles enquiry endpoints
type EnquiryHandler struct {
	enquiryService *services.EnquiryService
}

// NewEnquiryHandler creates a new enquiry handler
func NewEnquiryHandler(enquiryService *services.EnquiryService) *EnquiryHandler {
	return &EnquiryHandler{
		enquiryService: enquiryService,
	}
}

// UpdateEnquiryStatusRequest represents the status change body
type UpdateEnquiryStatusRequest struct {
	Status string `json:"status" enums:"pending,done"`
}

// Create handles a public enquiry submission
// @Summary Submit enquiry
// @Description Public contact form, no authentication required
// @Tags Enquiries
// @Accept json
// @Produce json
// @Param body body services.CreateEnquiryInput true "Enquiry"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /enquiries [post]
func (h *EnquiryHandler) Create(c *fiber.Ctx) error {
	var input services.CreateEnquiryInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	enquiry, err := h.enquiryService.Create(c.UserContext(), &input)
	if err != nil {
		return handleError(c, err, "")
	}

	return response.Created(c, "Enquiry submitted successfully", enquiry)
}

// List handles listing enquiries
// @Summary List enquiries
// @Tags Enquiries
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of name, phone or email"
// @Param status query string false "Status" Enums(pending, done)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /enquiries [get]
func (h *EnquiryHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.enquiryService.List(c.UserContext(), middleware.Principal(c), &services.ListEnquiriesInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: c.Query("search"),
		Status: c.Query("status"),
	})
	if err != nil {
		return handleError(c, err, "")
	}

	return response.Success(c, "Enquiries retrieved successfully", result)
}

// UpdateStatus handles marking an enquiry pending or done
// @Summary Update enquiry status
// @Tags Enquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enquiry ID"
// @Param body body UpdateEnquiryStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enquiries/{id}/status [patch]
func (h *EnquiryHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateEnquiryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	enquiry, err := h.enquiryService.UpdateStatus(c.UserContext(), middleware.Principal(c), c.Params("id"), req.Status)
	if err != nil {
		return handleError(c, err, "Enquiry not found")
	}

	return response.Success(c, "Enquiry updated successfully", enquiry)
}

// Delete handles deleting an enquiry (Admin only)
// @Summary Delete enquiry
// @Tags Enquiries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enquiry ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enquiries/{id} [delete]
func (h *EnquiryHandler) Delete(c *fiber.Ctx) error {
	if err := h.enquiryService.Delete(c.UserContext(), middleware.Principal(c), c.Params("id")); err != nil {
		return handleError(c, err, "Enquiry not found")
	}

	return response.Success(c, "Enquiry deleted successfully", nil)
}
