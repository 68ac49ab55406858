// Package httperr maps the usecase error taxonomy onto HTTP responses.
// Denials keep a deliberately flat message: callers learn "nda-required"
// or "no access" and nothing about which rule fired.
package httperr

import (
	"errors"
	"net/http"

	"github.com/dealdeck/dataroom-api/domain/apperrors"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func Respond(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "authentication required",
		})
	case errors.Is(err, apperrors.ErrNDARequired):
		ctx.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "nda_required",
			Message: "nda-required",
		})
	case errors.Is(err, apperrors.ErrForbidden):
		ctx.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "no access",
		})
	case errors.Is(err, apperrors.ErrNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, apperrors.ErrRateLimited):
		ctx.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: "too many requests",
		})
	case errors.Is(err, apperrors.ErrConflict):
		ctx.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	default:
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_server_error",
			Message: "something went wrong",
		})
	}
}

// BadRequest reports a malformed request body or parameter.
func BadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}
