package response

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the structured error payload returned by every endpoint.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PageData wraps a paginated list response.
type PageData struct {
	List     any   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// Error kinds used as the "error" field of ErrorBody.
const (
	KindValidation = "validation_error"
	KindNotFound   = "not_found"
	KindUpstream   = "upstream_error"
	KindInvariant  = "invariant_violation"
	KindInternal   = "internal_error"
)

// OK returns 200 with the given data.
func OK(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}

// Created returns 201 with the given data.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// NoContent returns 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Page returns a paginated list.
func Page(c *fiber.Ctx, list any, total int64, page, pageSize int) error {
	return c.JSON(PageData{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// BadRequest reports a validation failure (missing/malformed fields).
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{
		Error:   KindValidation,
		Message: message,
	})
}

// NotFound reports a missing entity.
func NotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorBody{
		Error:   KindNotFound,
		Message: message,
	})
}

// Conflict reports an invariant violation (e.g. deleting the active version).
func Conflict(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusConflict).JSON(ErrorBody{
		Error:   KindInvariant,
		Message: message,
	})
}

// UpstreamError reports a failure talking to the orchestrator or a channel.
func UpstreamError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadGateway).JSON(ErrorBody{
		Error:   KindUpstream,
		Message: message,
	})
}

// ServerError reports an unexpected internal failure.
func ServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "internal server error"
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorBody{
		Error:   KindInternal,
		Message: message,
	})
}
