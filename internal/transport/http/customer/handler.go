package customer

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/launderly/launderly/internal/dto"
	"github.com/launderly/launderly/internal/presentation/http/response"
	service "github.com/launderly/launderly/internal/service/customer"
	"github.com/launderly/launderly/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/launderly/launderly/transport/http/customer")

// Handler exposes customer endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a customer Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. The search route is
// registered before the id route so "search" never binds as an id.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/customers")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateCustomerRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.create",
		trace.WithAttributes(attribute.String("customer.email", payload.Email)))
	defer span.End()

	customer, err := h.svc.Create(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.NewCustomerResponse(customer)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.list")
	defer span.End()

	customers, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewCustomerResponses(customers)).Build()
}

func (h *Handler) search(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.search")
	defer span.End()

	customers, err := h.svc.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewCustomerResponses(customers)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.getByID",
		trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewCustomerResponse(customer)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	var patch dto.UpdateCustomerRequest
	if err := c.Bind(&patch); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.update",
		trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer, err := h.svc.Update(ctx, id, patch)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewCustomerResponse(customer)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.delete",
		trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusNoContent).Build()
}
