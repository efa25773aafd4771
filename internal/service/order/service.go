package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/launderly/launderly/internal/cache"
	"github.com/launderly/launderly/internal/config"
	"github.com/launderly/launderly/internal/dto"
	"github.com/launderly/launderly/internal/entity"
	"github.com/launderly/launderly/internal/messaging"
	catalogrepo "github.com/launderly/launderly/internal/repository/catalog"
	customerrepo "github.com/launderly/launderly/internal/repository/customer"
	repo "github.com/launderly/launderly/internal/repository/order"
	"github.com/launderly/launderly/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/launderly/launderly/service/order")

// defaultSeriesMonths is the revenue series window when none is requested;
// maxSeriesMonths bounds it, since each month in the window is one query.
const (
	defaultSeriesMonths = 6
	maxSeriesMonths     = 60
)

// Repository is the persistence boundary for orders. All multi-row writes
// are atomic: a failure leaves no partial item set and no stale total.
type Repository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, status string) ([]*entity.Order, error)
	Update(ctx context.Context, order *entity.Order, replaceItems bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	PaidRevenue(ctx context.Context) (decimal.Decimal, error)
	MonthRange(ctx context.Context, start, end time.Time) (repo.MonthlyStats, error)
}

// CustomerDirectory resolves customer references. Read-only collaborator.
type CustomerDirectory interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}

// ServiceCatalog resolves catalog services and their current prices.
// Read-only collaborator; prices are snapshotted onto order items.
type ServiceCatalog interface {
	GetByID(ctx context.Context, id string) (*entity.Service, error)
}

// Service owns the order lifecycle: creation, partial updates with
// wholesale item replacement, payment transitions, deletion, and the
// reporting queries consumed by the dashboard.
type Service struct {
	repo      Repository
	customers CustomerDirectory
	catalog   ServiceCatalog
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Customers  CustomerDirectory
	Catalog    ServiceCatalog
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		customers: p.Customers,
		catalog:   p.Catalog,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create places a new order. Customer and every service reference are
// resolved up front, prices are snapshotted, and the order plus all items
// are persisted in one transaction; a mid-operation failure leaves nothing
// behind. The order number is reserved in that same transaction and
// regenerated on collision.
func (s *Service) Create(ctx context.Context, req dto.CreateOrderRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.String("order.customer_id", req.CustomerID)))
	defer span.End()

	if req.CustomerID == "" {
		return nil, errorbank.Validation("customerId", "is required")
	}
	if err := validateItemInputs(req.Items); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		return nil, s.mapCustomerErr(span, err, req.CustomerID)
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:            uuid.NewString(),
		CustomerID:    req.CustomerID,
		Status:        entity.OrderStatusPending,
		Note:          req.Note,
		PaymentMethod: req.PaymentMethod,
		IsPaid:        req.IsPaid,
		DeliveryDate:  req.DeliveryDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.IsPaid {
		paidAt := now
		order.PaidAt = &paidAt
	}

	items, total, err := s.buildItems(ctx, order.ID, req.Items)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.TotalAmount = total

	if err := s.persistNew(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, order.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return nil, errorbank.Internal("failed to load created order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, created); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", created.ID), zap.Error(err))
	}

	s.publishEvent(ctx, EventOrderCreated, created)
	if created.IsPaid {
		s.publishEvent(ctx, EventOrderPaid, created)
	}
	return created, nil
}

// persistNew attempts the insert, regenerating the order number on
// collision a bounded number of times.
func (s *Service) persistNew(ctx context.Context, order *entity.Order) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order.OrderNumber = newOrderNumber()
		err := s.repo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, repo.ErrNumberTaken) {
			s.logger.Warn("order number collision, regenerating", zap.String("number", order.OrderNumber))
			continue
		}
		return errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}
	return errorbank.Conflict("could not reserve a unique order number")
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("id", id), zap.Error(err))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFoundEntity("Order", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", id), zap.Error(err))
	}
	return order, nil
}

// List returns orders newest-first, optionally filtered to one status.
func (s *Service) List(ctx context.Context, status string) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	if status != "" && !entity.ValidOrderStatus(status) {
		return nil, errorbank.Validation("status", fmt.Sprintf("unknown status %q", status))
	}

	orders, err := s.repo.List(ctx, status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Update applies a partial patch. Only fields present in the patch change;
// isPaid transitioning false to true stamps PaidAt exactly once, and PaidAt
// is never cleared afterwards. A nil Items leaves the collection untouched,
// an empty slice clears it, and a non-empty slice replaces it wholesale in
// one transaction. Returns the order freshly reloaded.
func (s *Service) Update(ctx context.Context, id string, patch dto.UpdateOrderRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFoundEntity("Order", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	paidTransition := false

	if patch.Status != nil {
		if !entity.ValidOrderStatus(*patch.Status) {
			return nil, errorbank.Validation("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		order.Status = *patch.Status
	}
	if patch.Note != nil {
		order.Note = *patch.Note
	}
	if patch.CustomerID != nil {
		if *patch.CustomerID == "" {
			return nil, errorbank.Validation("customerId", "must not be empty")
		}
		if _, err := s.customers.GetByID(ctx, *patch.CustomerID); err != nil {
			return nil, s.mapCustomerErr(span, err, *patch.CustomerID)
		}
		order.CustomerID = *patch.CustomerID
	}
	if patch.PaymentMethod != nil {
		order.PaymentMethod = *patch.PaymentMethod
	}
	if patch.DeliveryDate != nil {
		order.DeliveryDate = patch.DeliveryDate
	}
	if patch.IsPaid != nil {
		if *patch.IsPaid && !order.IsPaid {
			order.IsPaid = true
			paidAt := now
			order.PaidAt = &paidAt
			paidTransition = true
		} else {
			// Un-paying keeps PaidAt as the historical payment instant.
			order.IsPaid = *patch.IsPaid
		}
	}

	replaceItems := patch.Items != nil
	if replaceItems {
		if err := validateItemInputs(*patch.Items); err != nil {
			return nil, err
		}
		items, total, err := s.buildItems(ctx, order.ID, *patch.Items)
		if err != nil {
			return nil, err
		}
		order.Items = items
		order.TotalAmount = total
	}

	order.UpdatedAt = now

	if err := s.repo.Update(ctx, order, replaceItems); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFoundEntity("Order", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	s.dropFromCache(ctx, id)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return nil, errorbank.Internal("failed to load updated order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, updated); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", id), zap.Error(err))
	}
	if paidTransition {
		s.publishEvent(ctx, EventOrderPaid, updated)
	}
	return updated, nil
}

// Delete hard-deletes an order together with all of its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFoundEntity("Order", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}
	s.dropFromCache(ctx, id)
	return nil
}

// Count returns the total number of orders.
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errorbank.Internal("failed to count orders", errorbank.WithCause(err))
	}
	return count, nil
}

// CountPending returns the number of orders still pending.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	count, err := s.repo.CountByStatus(ctx, entity.OrderStatusPending)
	if err != nil {
		return 0, errorbank.Internal("failed to count pending orders", errorbank.WithCause(err))
	}
	return count, nil
}

// TotalRevenue sums total_amount across paid orders only; zero when no paid
// orders exist. The monthly series below deliberately does NOT filter by
// payment status.
func (s *Service) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.repo.PaidRevenue(ctx)
	if err != nil {
		return decimal.Zero, errorbank.Internal("failed to sum revenue", errorbank.WithCause(err))
	}
	return total, nil
}

// RevenueSeries buckets revenue and order counts per calendar month, local
// time, oldest to newest with the current month last. months <= 0 falls
// back to the default window; windows beyond maxSeriesMonths are rejected.
func (s *Service) RevenueSeries(ctx context.Context, months int) (dto.RevenueSeries, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.RevenueSeries", trace.WithAttributes(attribute.Int("series.months", months)))
	defer span.End()

	if months <= 0 {
		months = defaultSeriesMonths
	}
	if months > maxSeriesMonths {
		return dto.RevenueSeries{}, errorbank.Validation("months", fmt.Sprintf("must be at most %d", maxSeriesMonths))
	}

	now := time.Now()
	series := dto.RevenueSeries{
		Labels:  make([]string, 0, months),
		Revenue: make([]decimal.Decimal, 0, months),
		Orders:  make([]int, 0, months),
	}

	for i := months - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, 0)

		stats, err := s.repo.MonthRange(ctx, start, end)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return dto.RevenueSeries{}, errorbank.Internal("failed to aggregate revenue", errorbank.WithCause(err))
		}

		series.Labels = append(series.Labels, start.Format("Jan"))
		series.Revenue = append(series.Revenue, stats.Revenue)
		series.Orders = append(series.Orders, stats.Orders)
	}
	return series, nil
}

// buildItems resolves every requested service, snapshots its price, and
// returns the item rows plus their summed total.
func (s *Service) buildItems(ctx context.Context, orderID string, inputs []dto.OrderItemInput) ([]*entity.OrderItem, decimal.Decimal, error) {
	items := make([]*entity.OrderItem, 0, len(inputs))
	total := decimal.Zero

	for _, input := range inputs {
		svc, err := s.catalog.GetByID(ctx, input.ServiceID)
		if err != nil {
			if errors.Is(err, catalogrepo.ErrNotFound) {
				return nil, decimal.Zero, errorbank.NotFoundEntity("Service", input.ServiceID)
			}
			return nil, decimal.Zero, errorbank.Internal("failed to resolve service", errorbank.WithCause(err))
		}

		itemTotal := svc.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
		items = append(items, &entity.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ServiceID: input.ServiceID,
			Price:     svc.Price,
			Quantity:  input.Quantity,
			Total:     itemTotal,
		})
		total = total.Add(itemTotal)
	}
	return items, total, nil
}

func validateItemInputs(items []dto.OrderItemInput) error {
	for i, item := range items {
		if item.ServiceID == "" {
			return errorbank.Validation(fmt.Sprintf("items[%d].serviceId", i), "is required")
		}
		if item.Quantity <= 0 {
			return errorbank.Validation(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
	}
	return nil
}

func (s *Service) mapCustomerErr(span trace.Span, err error, id string) error {
	if errors.Is(err, customerrepo.ErrNotFound) {
		return errorbank.NotFoundEntity("Customer", id)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "customer lookup failed")
	return errorbank.Internal("failed to resolve customer", errorbank.WithCause(err))
}

func (s *Service) publishEvent(ctx context.Context, eventType string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Type:        eventType,
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		IsPaid:      order.IsPaid,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte("order-"+order.ID), payload); err != nil {
		s.logger.Error("publish order event", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *Service) cacheKey(id string) string {
	return "orders:" + id
}

func (s *Service) getFromCache(ctx context.Context, id string) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) dropFromCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache delete failed", zap.String("id", id), zap.Error(err))
	}
}
