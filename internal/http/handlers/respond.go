package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: middlewares.RequestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondUnauthorized(ctx *gin.Context) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
}

// RespondServiceError is the single place service errors become HTTP
// replies. Credential and session failures always produce the same body for
// a given request id, whichever check failed.
func RespondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		RespondError(ctx, http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password", nil)
	case errors.Is(err, apperr.ErrUnauthenticated):
		RespondUnauthorized(ctx)
	case errors.Is(err, apperr.ErrForbidden):
		RespondError(ctx, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
	case errors.Is(err, apperr.ErrInvalidResetToken):
		RespondError(ctx, http.StatusBadRequest, "invalid_token", "Invalid or expired token", nil)
	case errors.Is(err, apperr.ErrConflict):
		RespondError(ctx, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, apperr.ErrNotFound):
		RespondNotFound(ctx, err.Error())
	case errors.Is(err, apperr.ErrInvalidInput):
		RespondBadRequest(ctx, err.Error(), nil)
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), "unhandled service error",
			"err", err,
			"route", ctx.FullPath(),
			"request_id", middlewares.RequestIDFrom(ctx),
		)
		RespondInternal(ctx, "Something went wrong")
	}
}
