package dashboard

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/launderly/launderly/internal/presentation/http/response"
	service "github.com/launderly/launderly/internal/service/dashboard"
	"github.com/launderly/launderly/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/launderly/launderly/transport/http/dashboard")

// Handler exposes dashboard aggregate endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a dashboard Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/dashboard")
	g.GET("/stats", h.stats)
	g.GET("/revenue", h.revenue)
}

func (h *Handler) stats(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "dashboard.stats")
	defer span.End()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(stats).Build()
}

func (h *Handler) revenue(c echo.Context) error {
	b := response.New(c)

	months := 6
	if raw := c.QueryParam("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return b.WithError(errorbank.Validation("months", "must be a positive integer")).Build()
		}
		months = parsed
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "dashboard.revenue")
	defer span.End()

	series, err := h.svc.Revenue(ctx, months)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(series).Build()
}
