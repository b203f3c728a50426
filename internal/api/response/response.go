// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// Envelope is the success body.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorEnvelope is the failure body.
type ErrorEnvelope struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// OK writes a 200 envelope.
func OK(c *fiber.Ctx, data any) error {
	return Write(c, fiber.StatusOK, data, "")
}

// Created writes a 201 envelope.
func Created(c *fiber.Ctx, data any, message string) error {
	return Write(c, fiber.StatusCreated, data, message)
}

// Write writes a success envelope with the given status.
func Write(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: now(),
	})
}

// Error writes the failure envelope for err.
func Error(c *fiber.Ctx, err *apperrors.DomainError) error {
	body := ErrorEnvelope{
		Success:   false,
		Message:   err.Message,
		Code:      err.Code,
		Timestamp: now(),
	}
	if len(err.Details) > 0 {
		body.Details = err.Details
	}
	return c.Status(err.HTTPStatus).JSON(body)
}
