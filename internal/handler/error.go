package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/models"
)

// ErrorResponse is the error envelope every failing endpoint returns.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code plus a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps domain errors onto HTTP statuses. Anything unrecognised
// becomes a 500.
func respondError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return respond(c, fe.Code, codeForStatus(fe.Code), fe.Message)
	}

	switch {
	case errors.Is(err, models.ErrRepoNotFound),
		errors.Is(err, models.ErrFixNotFound),
		errors.Is(err, models.ErrMemberNotFound),
		errors.Is(err, models.ErrQuestionNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, models.ErrRepoExists):
		return respond(c, fiber.StatusConflict, "REPO_EXISTS", err.Error())
	case errors.Is(err, models.ErrMemberExists):
		return respond(c, fiber.StatusConflict, "MEMBER_EXISTS", err.Error())
	case errors.Is(err, models.ErrRepoNotReady):
		return respond(c, fiber.StatusConflict, "REPO_NOT_READY", err.Error())
	case errors.Is(err, models.ErrInsufficientCredits):
		return respond(c, fiber.StatusPaymentRequired, "INSUFFICIENT_CREDITS", err.Error())
	default:
		return respond(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// codeForStatus derives the envelope code when the handler raised a bare
// HTTP status instead of a domain error.
func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case status == fiber.StatusNotFound:
		return "NOT_FOUND"
	case status == fiber.StatusConflict:
		return "CONFLICT"
	case status >= 500:
		return "INTERNAL_ERROR"
	default:
		return "REQUEST_FAILED"
	}
}

func respond(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
