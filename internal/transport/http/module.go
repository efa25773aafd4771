package http

import (
	"go.uber.org/fx"

	"github.com/labstack/echo/v4"

	catalogtransport "github.com/launderly/launderly/internal/transport/http/catalog"
	customertransport "github.com/launderly/launderly/internal/transport/http/customer"
	dashboardtransport "github.com/launderly/launderly/internal/transport/http/dashboard"
	ordertransport "github.com/launderly/launderly/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers and the bearer token guard.
var Module = fx.Options(
	fx.Invoke(func(e *echo.Echo, mw echo.MiddlewareFunc) {
		e.Use(mw)
	}),
	fx.Provide(NewAuthMiddleware),
	ordertransport.Module,
	customertransport.Module,
	catalogtransport.Module,
	dashboardtransport.Module,
)
