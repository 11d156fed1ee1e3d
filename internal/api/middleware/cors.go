package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// CORS allows requests whose Origin is in allowed, and requests without an
// Origin header (same-origin, curl, server-to-server). Any other origin is
// rejected with 403 before reaching a handler.
func CORS(allowed []string) echo.MiddlewareFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	isAllowed := func(origin string) bool {
		_, ok := set[origin]
		return ok
	}

	cors := echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return isAllowed(origin), nil
		},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key",
		},
		AllowCredentials: true,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := cors(next)
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin != "" && !isAllowed(origin) {
				return echo.NewHTTPError(http.StatusForbidden, "origin not allowed")
			}
			return h(c)
		}
	}
}
