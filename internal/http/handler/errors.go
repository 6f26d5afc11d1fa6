package handler

import (
	"errors"
	"net/http"

	apperrors "clientkit/pkg/errors"
)

// MapToPublicError maps internal errors to public-facing HTTP status codes and messages.
// Client errors keep their own message; server errors get a generic one.
func MapToPublicError(err error) (int, string) {
	code, generic := classify(err)
	if code >= http.StatusInternalServerError {
		return code, generic
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return code, appErr.Message
	}
	return code, err.Error()
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "resource conflict"
	case errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict, "invalid state"
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, apperrors.ErrExpired):
		return http.StatusGone, "resource expired"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
