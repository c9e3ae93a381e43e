package handlers

import (
	"strconv"

	"punebus-backend/internal/adapters/http/middleware"
	"punebus-backend/internal/core/services"
	"punebus-backend/internal/pkg/pagination"
	"punebus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles principal management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SetActiveRequest represents the activate/deactivate request body
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// ResetPasswordRequest represents the admin password reset body
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ListUsers handles listing principals
// @Summary List users
// @Description Paginated list of partners and staff
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of name, email or phone"
// @Param role query string false "Role"
// @Param category query string false "Category" Enums(partner, staff)
// @Param is_active query bool false "Active flag"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListUsersInput{
		Page:     params.Page,
		Limit:    params.Limit,
		Search:   c.Query("search"),
		Role:     c.Query("role"),
		Category: c.Query("category"),
		IsActive: parseBoolQuery(c, "is_active"),
	}

	result, err := h.userService.ListUsers(c.UserContext(), middleware.Principal(c), input)
	if err != nil {
		return handleError(c, err, "")
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// GetUser handles getting a principal by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err, "User not found")
	}

	return response.Success(c, "User retrieved successfully", user)
}

// CreateUser handles creating a partner or staff principal
// @Summary Create user
// @Description Staff may create partners; only admins may create staff
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.CreateUser(c.UserContext(), middleware.Principal(c), &input)
	if err != nil {
		return handleError(c, err, "")
	}

	return response.Created(c, "User created successfully", user)
}

// UpdateUser handles updating a principal
// @Summary Update user
// @Description Role cannot be changed
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body services.UpdateUserInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUser(c.UserContext(), middleware.Principal(c), c.Params("id"), &input)
	if err != nil {
		return handleError(c, err, "User not found")
	}

	return response.Success(c, "User updated successfully", user)
}

// SetActive handles activating or deactivating a principal
// @Summary Activate or deactivate user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/status [patch]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.IsActive == nil {
		return response.BadRequest(c, "Missing required fields: is_active")
	}

	user, err := h.userService.UpdateUser(c.UserContext(), middleware.Principal(c), c.Params("id"), &services.UpdateUserInput{
		IsActive: req.IsActive,
	})
	if err != nil {
		return handleError(c, err, "User not found")
	}

	return response.Success(c, "User status updated successfully", user)
}

// DeleteUser handles deleting a principal (Admin only)
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.UserContext(), middleware.Principal(c), c.Params("id")); err != nil {
		return handleError(c, err, "User not found")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ResetPassword handles an admin password reset
// @Summary Reset user password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body ResetPasswordRequest true "New password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ResetPassword(c.UserContext(), middleware.Principal(c), c.Params("id"), req.NewPassword); err != nil {
		return handleError(c, err, "User not found")
	}

	return response.Success(c, "Password reset successfully", nil)
}

// GetProfile handles getting own profile
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return handleError(c, err, "User not found")
	}

	return response.Success(c, "Profile retrieved successfully", user)
}

// ChangePassword handles changing own password
// @Summary Change own password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.UserContext(), middleware.Principal(c), &input); err != nil {
		return handleError(c, err, "User not found")
	}

	return response.Success(c, "Password changed successfully", nil)
}

// parseBoolQuery reads an optional boolean query parameter
func parseBoolQuery(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
