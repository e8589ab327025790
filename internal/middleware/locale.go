// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/livingdocs/identity/internal/i18n"
)

// Locale detects the preferred language from the Accept-Language header and
// stores it in the request context, so notifications triggered by the request
// are localized.
func Locale(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		lang := i18n.MatchLanguage(req.Header.Get("Accept-Language"))
		c.SetRequest(req.WithContext(i18n.WithLocale(req.Context(), lang)))
		return next(c)
	}
}
