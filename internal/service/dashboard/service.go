package dashboard

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/launderly/launderly/internal/dto"
	customersvc "github.com/launderly/launderly/internal/service/customer"
	ordersvc "github.com/launderly/launderly/internal/service/order"
)

var serviceTracer = otel.Tracer("github.com/launderly/launderly/service/dashboard")

// Service assembles the aggregate figures for the admin dashboard from the
// order and customer services.
type Service struct {
	orders    *ordersvc.Service
	customers *customersvc.Service
	logger    *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    *ordersvc.Service
	Customers *customersvc.Service
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{orders: p.Orders, customers: p.Customers, logger: p.Logger}
}

// Stats returns overall totals plus a six-month revenue series.
func (s *Service) Stats(ctx context.Context) (dto.DashboardStats, error) {
	ctx, span := serviceTracer.Start(ctx, "DashboardService.Stats")
	defer span.End()

	totalCustomers, err := s.customers.Count(ctx)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	totalOrders, err := s.orders.Count(ctx)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	totalRevenue, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	pendingOrders, err := s.orders.CountPending(ctx)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	series, err := s.orders.RevenueSeries(ctx, 6)
	if err != nil {
		return dto.DashboardStats{}, err
	}

	return dto.DashboardStats{
		TotalCustomers: totalCustomers,
		TotalOrders:    totalOrders,
		TotalRevenue:   totalRevenue,
		PendingOrders:  pendingOrders,
		RevenueData:    series,
	}, nil
}

// Revenue returns the month-bucketed revenue series for the last n months.
func (s *Service) Revenue(ctx context.Context, months int) (dto.RevenueSeries, error) {
	ctx, span := serviceTracer.Start(ctx, "DashboardService.Revenue")
	defer span.End()

	return s.orders.RevenueSeries(ctx, months)
}
