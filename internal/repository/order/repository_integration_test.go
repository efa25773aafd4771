package order_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/launderly/launderly/internal/database"
	"github.com/launderly/launderly/internal/entity"
	orderrepo "github.com/launderly/launderly/internal/repository/order"
)

const migrationsDir = "../../../db/migrations/sql"

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	require.NoError(t, db.Ping())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.UpContext(ctx, db.DB, migrationsDir))

	return db
}

type fixtures struct {
	repo     *orderrepo.Repository
	customer entity.Customer
	wash     entity.Service
	iron     entity.Service
}

func seedFixtures(t *testing.T, db *bun.DB) fixtures {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	customer := entity.Customer{
		ID: uuid.NewString(), FirstName: "Ada", LastName: "Okafor",
		Email: "ada@example.com", CreatedAt: now, UpdatedAt: now,
	}
	_, err := db.NewInsert().Model(&customer).Exec(ctx)
	require.NoError(t, err)

	wash := entity.Service{
		ID: uuid.NewString(), Name: "Wash & Fold", Price: decimal.RequireFromString("2.50"),
		IsActive: true, EstimatedTime: 1440, CreatedAt: now, UpdatedAt: now,
	}
	iron := entity.Service{
		ID: uuid.NewString(), Name: "Ironing", Price: decimal.RequireFromString("1.75"),
		IsActive: true, EstimatedTime: 720, CreatedAt: now, UpdatedAt: now,
	}
	for _, svc := range []*entity.Service{&wash, &iron} {
		_, err := db.NewInsert().Model(svc).Exec(ctx)
		require.NoError(t, err)
	}

	conns := &database.Connections{Writer: db, Reader: db}
	return fixtures{repo: orderrepo.NewRepository(conns), customer: customer, wash: wash, iron: iron}
}

func buildOrder(f fixtures, number string, items ...*entity.OrderItem) *entity.Order {
	now := time.Now().UTC()
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	order := &entity.Order{
		ID:          uuid.NewString(),
		OrderNumber: number,
		CustomerID:  f.customer.ID,
		TotalAmount: total,
		Status:      entity.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, item := range items {
		item.OrderID = order.ID
	}
	order.Items = items
	return order
}

func newItem(svc entity.Service, quantity int) *entity.OrderItem {
	return &entity.OrderItem{
		ID:        uuid.NewString(),
		ServiceID: svc.ID,
		Price:     svc.Price,
		Quantity:  quantity,
		Total:     svc.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func TestRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	order := buildOrder(f, "ORD-2026-1001", newItem(f.wash, 4), newItem(f.iron, 2))
	require.NoError(t, f.repo.Create(ctx, order))

	got, err := f.repo.GetByID(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, "ORD-2026-1001", got.OrderNumber)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "ada@example.com", got.Customer.Email)
	require.Len(t, got.Items, 2)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("13.50")), "got %s", got.TotalAmount)
	for _, item := range got.Items {
		require.NotNil(t, item.Service)
	}
}

func TestRepositoryCreateDuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	first := buildOrder(f, "ORD-2026-1002")
	require.NoError(t, f.repo.Create(ctx, first))

	dup := buildOrder(f, "ORD-2026-1002")
	err := f.repo.Create(ctx, dup)
	require.ErrorIs(t, err, orderrepo.ErrNumberTaken)

	// The failed insert must leave nothing behind.
	_, err = f.repo.GetByID(ctx, dup.ID)
	assert.ErrorIs(t, err, orderrepo.ErrNotFound)
}

func TestRepositoryCreateConcurrentSameNumber(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	// Both inserts race for the same number; whatever the interleaving,
	// the unique index lets exactly one through and the loser must see
	// ErrNumberTaken, never a bare driver error.
	first := buildOrder(f, "ORD-2026-1010")
	second := buildOrder(f, "ORD-2026-1010")

	errs := make(chan error, 2)
	for _, order := range []*entity.Order{first, second} {
		go func(o *entity.Order) {
			errs <- f.repo.Create(ctx, o)
		}(order)
	}

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], orderrepo.ErrNumberTaken)

	count, err := db.NewSelect().Model((*entity.Order)(nil)).
		Where("o.order_number = ?", "ORD-2026-1010").
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepositoryUpdateReplacesItems(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	order := buildOrder(f, "ORD-2026-1003", newItem(f.wash, 3))
	require.NoError(t, f.repo.Create(ctx, order))

	replacement := newItem(f.iron, 2)
	replacement.OrderID = order.ID
	order.Items = []*entity.OrderItem{replacement}
	order.TotalAmount = replacement.Total
	require.NoError(t, f.repo.Update(ctx, order, true))

	got, err := f.repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, f.iron.ID, got.Items[0].ServiceID)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("3.50")))
}

func TestRepositoryUpdateCanClearItems(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	order := buildOrder(f, "ORD-2026-1004", newItem(f.wash, 2))
	require.NoError(t, f.repo.Create(ctx, order))

	order.Items = nil
	order.TotalAmount = decimal.Zero
	require.NoError(t, f.repo.Update(ctx, order, true))

	got, err := f.repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.True(t, got.TotalAmount.IsZero())
}

func TestRepositoryDeleteRemovesItems(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	order := buildOrder(f, "ORD-2026-1005", newItem(f.wash, 1))
	require.NoError(t, f.repo.Create(ctx, order))

	require.NoError(t, f.repo.Delete(ctx, order.ID))

	_, err := f.repo.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, orderrepo.ErrNotFound)

	count, err := db.NewSelect().Model((*entity.OrderItem)(nil)).
		Where("order_id = ?", order.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, f.repo.Delete(ctx, order.ID), orderrepo.ErrNotFound)
}

func TestRepositoryRevenueAggregates(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	paid := buildOrder(f, "ORD-2026-1006", newItem(f.wash, 4))
	paid.IsPaid = true
	now := time.Now().UTC()
	paid.PaidAt = &now
	require.NoError(t, f.repo.Create(ctx, paid))

	unpaid := buildOrder(f, "ORD-2026-1007", newItem(f.iron, 2))
	require.NoError(t, f.repo.Create(ctx, unpaid))

	// Paid-only filter applies to the overall figure.
	revenue, err := f.repo.PaidRevenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("10.00")), "got %s", revenue)

	// The monthly window counts every order regardless of payment.
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats, err := f.repo.MonthRange(ctx, start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Orders)
	assert.True(t, stats.Revenue.Equal(decimal.RequireFromString("13.50")), "got %s", stats.Revenue)
}

func TestRepositoryListFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	pending := buildOrder(f, "ORD-2026-1008")
	require.NoError(t, f.repo.Create(ctx, pending))

	done := buildOrder(f, "ORD-2026-1009")
	done.Status = entity.OrderStatusCompleted
	require.NoError(t, f.repo.Create(ctx, done))

	all, err := f.repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := f.repo.List(ctx, entity.OrderStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "ORD-2026-1009", completed[0].OrderNumber)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	now := time.Now().UTC()
	oldest := buildOrder(f, "ORD-2026-1011")
	oldest.CreatedAt = now.Add(-2 * time.Hour)
	middle := buildOrder(f, "ORD-2026-1012")
	middle.CreatedAt = now.Add(-time.Hour)
	newest := buildOrder(f, "ORD-2026-1013")
	newest.CreatedAt = now

	// Insert out of creation order so the result cannot ride on insert order.
	for _, order := range []*entity.Order{middle, newest, oldest} {
		require.NoError(t, f.repo.Create(ctx, order))
	}

	orders, err := f.repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, "ORD-2026-1013", orders[0].OrderNumber)
	assert.Equal(t, "ORD-2026-1012", orders[1].OrderNumber)
	assert.Equal(t, "ORD-2026-1011", orders[2].OrderNumber)
}
