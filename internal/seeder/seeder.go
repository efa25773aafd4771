package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/launderly/launderly/internal/database"
	"github.com/launderly/launderly/internal/entity"
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// All seeds the service catalog, a few customers, and a sample order.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Services(ctx); err != nil {
		return err
	}
	if err := s.Customers(ctx); err != nil {
		return err
	}
	return s.Orders(ctx)
}

// Services seeds the base laundry catalog if it is missing.
func (s *Seeder) Services(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Service{
		{ID: uuid.NewString(), Name: "Wash & Fold", Description: "Per kilogram wash, dry, and fold", Price: decimal.RequireFromString("2.50"), IsActive: true, EstimatedTime: 1440, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Name: "Dry Cleaning", Description: "Per garment dry cleaning", Price: decimal.RequireFromString("8.00"), IsActive: true, EstimatedTime: 2880, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Name: "Ironing", Description: "Per garment press", Price: decimal.RequireFromString("1.75"), IsActive: true, EstimatedTime: 720, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Name: "Express Wash", Description: "Same day turnaround", Price: decimal.RequireFromString("5.00"), IsActive: true, EstimatedTime: 360, CreatedAt: now, UpdatedAt: now},
	}

	for _, sample := range samples {
		svc := sample
		_, err := s.db.NewInsert().Model(&svc).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded services", zap.Int("count", len(samples)))
	}
	return nil
}

// Customers seeds example customers if they are missing.
func (s *Seeder) Customers(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Customer{
		{ID: uuid.NewString(), FirstName: "Ada", LastName: "Okafor", Email: "ada.okafor@example.com", Phone: "+2348012345001", Address: "12 Marina Rd, Lagos", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), FirstName: "Bram", LastName: "Janssen", Email: "bram.janssen@example.com", Phone: "+31612345002", Address: "Keizersgracht 42, Amsterdam", CreatedAt: now, UpdatedAt: now},
	}

	for _, sample := range samples {
		customer := sample
		_, err := s.db.NewInsert().Model(&customer).
			On("CONFLICT (email) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded customers", zap.Int("count", len(samples)))
	}
	return nil
}

// Orders seeds one sample order against the seeded customer and catalog.
// It is a no-op when the sample order number already exists or when the
// prerequisite rows are missing.
func (s *Seeder) Orders(ctx context.Context) error {
	const sampleNumber = "ORD-2026-0001"

	exists, err := s.db.NewSelect().Model((*entity.Order)(nil)).
		Where("o.order_number = ?", sampleNumber).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	var customer entity.Customer
	if err := s.db.NewSelect().Model(&customer).
		Where("email = ?", "ada.okafor@example.com").
		Limit(1).
		Scan(ctx); err != nil {
		return err
	}

	var svc entity.Service
	if err := s.db.NewSelect().Model(&svc).
		Where("name = ?", "Wash & Fold").
		Limit(1).
		Scan(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	quantity := 4
	total := svc.Price.Mul(decimal.NewFromInt(int64(quantity)))
	order := entity.Order{
		ID:          uuid.NewString(),
		OrderNumber: sampleNumber,
		CustomerID:  customer.ID,
		TotalAmount: total,
		Status:      entity.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item := entity.OrderItem{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		ServiceID: svc.ID,
		Price:     svc.Price,
		Quantity:  quantity,
		Total:     total,
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&item).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("seeded sample order", zap.String("orderNumber", sampleNumber))
	}
	return nil
}
