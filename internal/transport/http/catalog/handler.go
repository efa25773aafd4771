package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/launderly/launderly/internal/dto"
	"github.com/launderly/launderly/internal/presentation/http/response"
	service "github.com/launderly/launderly/internal/service/catalog"
	"github.com/launderly/launderly/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/launderly/launderly/transport/http/catalog")

// Handler exposes service catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/services")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateServiceRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "services.create",
		trace.WithAttributes(attribute.String("service.name", payload.Name)))
	defer span.End()

	svc, err := h.svc.Create(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.NewServiceResponse(svc)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "services.list")
	defer span.End()

	activeOnly := c.QueryParam("active") == "true"
	services, err := h.svc.List(ctx, activeOnly)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewServiceResponses(services)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "services.getByID",
		trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	svc, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewServiceResponse(svc)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	var patch dto.UpdateServiceRequest
	if err := c.Bind(&patch); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "services.update",
		trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	svc, err := h.svc.Update(ctx, id, patch)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewServiceResponse(svc)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "services.delete",
		trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusNoContent).Build()
}
