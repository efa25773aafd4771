package http

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/launderly/launderly/internal/config"
	"github.com/launderly/launderly/internal/presentation/http/response"
	"github.com/launderly/launderly/pkg/errorbank"
)

// NewAuthMiddleware returns a static bearer token check. When no token is
// configured the middleware is a pass-through. Health and metrics stay open
// so probes and scrapers keep working.
func NewAuthMiddleware(cfg config.Config) echo.MiddlewareFunc {
	token := cfg.Auth.Token
	openPaths := map[string]struct{}{
		"/health": {},
		cfg.Observability.PrometheusPath: {},
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return next(c)
			}
			if _, ok := openPaths[c.Path()]; ok {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				return response.New(c).WithError(errorbank.Unauthorized("invalid or missing bearer token")).Build()
			}
			return next(c)
		}
	}
}
