package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/blogdesk/search-service/tenant"
	"github.com/blogdesk/search-service/wrapper"
)

// TenantMiddleware resolve tenant identity from request context and inject it,
// required tenant context missing fails fast with a client error
func TenantMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		t, err := tenant.ResolveFromHTTP(c.Request())
		if err != nil {
			return wrapper.NewHTTPResponse(http.StatusBadRequest, "Missing tenant context", err).JSON(c.Response())
		}
		c.SetRequest(c.Request().WithContext(tenant.WithContext(c.Request().Context(), t)))
		return next(c)
	}
}
