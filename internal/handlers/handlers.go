// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the JSON HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/livingdocs/identity/internal/repository"
	"github.com/livingdocs/identity/internal/services/auth"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	svc  *auth.Service
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(svc *auth.Service, repo *repository.Repository) *Handlers {
	return &Handlers{svc: svc, repo: repo}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
