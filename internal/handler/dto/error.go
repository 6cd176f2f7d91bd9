package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mtlprog/guildtask/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Task errors
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", message
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", message
	case errors.Is(err, domain.ErrTaskFinalized):
		return http.StatusConflict, "TASK_FINALIZED", message
	case errors.Is(err, domain.ErrNotCommunityTask):
		return http.StatusConflict, "NOT_COMMUNITY_TASK", message
	case errors.Is(err, domain.ErrIDConflict):
		return http.StatusConflict, "ID_CONFLICT", message

	// Permission errors
	case errors.Is(err, domain.ErrNotTaskClaimant):
		return http.StatusForbidden, "NOT_CLAIMANT", message
	case errors.Is(err, domain.ErrNotTaskCreator):
		return http.StatusForbidden, "NOT_CREATOR", message
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "NOT_AUTHORIZED", message

	// Member errors
	case errors.Is(err, domain.ErrMemberNotFound):
		return http.StatusNotFound, "MEMBER_NOT_FOUND", message
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", message

	case errors.Is(err, domain.ErrDefinitionNotFound):
		return http.StatusNotFound, "DEFINITION_NOT_FOUND", message

	// Validation errors
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "INVALID_AMOUNT", message
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidTier),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Default: internal server error
	default:
		// Storage failures end up here; the message is not leaked to clients.
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
