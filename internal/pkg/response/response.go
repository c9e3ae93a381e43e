package response

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Error codes carried in failed responses so clients can branch without
// parsing the human readable message.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// Response is the envelope every API endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func send(c *fiber.Ctx, status int, body Response) error {
	return c.Status(status).JSON(body)
}

// Success answers 200 with data
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return send(c, fiber.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created answers 201 with the created resource
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return send(c, fiber.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Fail answers a failed request. An empty message falls back to the status text.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	if message == "" {
		message = utils.StatusMessage(status)
	}
	return send(c, status, Response{Error: message, Code: code})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, CodeValidation, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusForbidden, CodeForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, CodeNotFound, message)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusConflict, CodeConflict, message)
}

func TooManyRequests(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusTooManyRequests, CodeRateLimited, message)
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusInternalServerError, CodeInternal, message)
}
