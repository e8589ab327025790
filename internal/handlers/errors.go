// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/livingdocs/identity/internal/repository"
	"github.com/livingdocs/identity/internal/services/auth"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// writeError maps service errors onto HTTP responses. Unknown errors are
// surfaced as 500 without leaking their message.
func writeError(c echo.Context, err error) error {
	var locked *auth.AccountLockedError
	if errors.As(err, &locked) {
		retryAfter := int(locked.RetryAfter.Round(time.Second).Seconds())
		c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		return c.JSON(http.StatusLocked, errorResponse{Error: "account temporarily locked"})
	}

	var weak *auth.PasswordValidationError
	if errors.As(err, &weak) {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "password does not meet requirements",
			Details: weak.Messages(),
		})
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, auth.ErrEmailNotVerified):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "email not verified"})
	case errors.Is(err, auth.ErrAccountInactive):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "account inactive"})
	case errors.Is(err, auth.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, errorResponse{Error: "email already registered"})
	case errors.Is(err, auth.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid email address"})
	case errors.Is(err, auth.ErrTokenInvalid):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
