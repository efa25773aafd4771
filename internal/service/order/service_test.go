package order_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/launderly/launderly/internal/config"
	"github.com/launderly/launderly/internal/dto"
	"github.com/launderly/launderly/internal/entity"
	catalogrepo "github.com/launderly/launderly/internal/repository/catalog"
	customerrepo "github.com/launderly/launderly/internal/repository/customer"
	orderrepo "github.com/launderly/launderly/internal/repository/order"
	"github.com/launderly/launderly/internal/service/order"
	"github.com/launderly/launderly/pkg/errorbank"
)

type fakeRepo struct {
	mu         sync.Mutex
	orders     map[string]*entity.Order
	collisions int
	creates    int

	monthly map[string]orderrepo.MonthlyStats
	paid    decimal.Decimal
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:  make(map[string]*entity.Order),
		monthly: make(map[string]orderrepo.MonthlyStats),
		paid:    decimal.Zero,
	}
}

func (f *fakeRepo) Create(_ context.Context, o *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.collisions > 0 {
		f.collisions--
		return orderrepo.ErrNumberTaken
	}
	stored := *o
	stored.Items = append([]*entity.OrderItem(nil), o.Items...)
	f.orders[o.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[id]
	if !ok {
		return nil, orderrepo.ErrNotFound
	}
	out := *stored
	out.Items = append([]*entity.OrderItem(nil), stored.Items...)
	return &out, nil
}

func (f *fakeRepo) List(_ context.Context, status string) ([]*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, o *entity.Order, replaceItems bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.orders[o.ID]
	if !ok {
		return orderrepo.ErrNotFound
	}
	stored := *o
	if replaceItems {
		stored.Items = append([]*entity.OrderItem(nil), o.Items...)
	} else {
		stored.Items = prev.Items
		stored.TotalAmount = prev.TotalAmount
	}
	f.orders[o.ID] = &stored
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return orderrepo.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders), nil
}

func (f *fakeRepo) CountByStatus(_ context.Context, status string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) PaidRevenue(context.Context) (decimal.Decimal, error) {
	return f.paid, nil
}

func (f *fakeRepo) MonthRange(_ context.Context, start, _ time.Time) (orderrepo.MonthlyStats, error) {
	if stats, ok := f.monthly[start.Format("2006-01")]; ok {
		return stats, nil
	}
	return orderrepo.MonthlyStats{Revenue: decimal.Zero}, nil
}

type fakeDirectory struct {
	customers map[string]*entity.Customer
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, customerrepo.ErrNotFound
	}
	return c, nil
}

type fakeCatalog struct {
	services map[string]*entity.Service
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (*entity.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, catalogrepo.ErrNotFound
	}
	return svc, nil
}

type fixture struct {
	svc        *order.Service
	repo       *fakeRepo
	customerID string
	washID     string
	ironID     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customerID := uuid.NewString()
	washID := uuid.NewString()
	ironID := uuid.NewString()

	repo := newFakeRepo()
	dir := &fakeDirectory{customers: map[string]*entity.Customer{
		customerID: {ID: customerID, FirstName: "Ada", Email: "ada@example.com"},
	}}
	cat := &fakeCatalog{services: map[string]*entity.Service{
		washID: {ID: washID, Name: "Wash & Fold", Price: decimal.RequireFromString("2.50"), IsActive: true},
		ironID: {ID: ironID, Name: "Ironing", Price: decimal.RequireFromString("1.75"), IsActive: true},
	}}

	svc := order.NewService(order.Params{
		Repository: repo,
		Customers:  dir,
		Catalog:    cat,
		Config:     config.Config{},
		Logger:     zap.NewNop(),
	})

	return &fixture{svc: svc, repo: repo, customerID: customerID, washID: washID, ironID: ironID}
}

func kindOf(t *testing.T, err error) errorbank.Kind {
	t.Helper()
	appErr := errorbank.From(err)
	require.NotNil(t, appErr)
	return appErr.Kind()
}

func TestCreateComputesTotalsFromSnapshotPrices(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items: []dto.OrderItemInput{
			{ServiceID: fx.washID, Quantity: 4},
			{ServiceID: fx.ironID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPending, created.Status)
	assert.False(t, created.IsPaid)
	assert.Nil(t, created.PaidAt)
	require.Len(t, created.Items, 2)

	// 4 * 2.50 + 2 * 1.75 = 13.50
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("13.50")),
		"got total %s", created.TotalAmount)
	assert.True(t, created.Items[0].Price.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, created.Items[0].Total.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, created.Items[1].Total.Equal(decimal.RequireFromString("3.50")))
}

func TestCreateOrderNumberFormat(t *testing.T) {
	fx := newFixture(t)

	created, err := fx.svc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{4}-\d{4}$`), created.OrderNumber)
}

func TestCreateEmptyItemsAllowed(t *testing.T) {
	fx := newFixture(t)

	created, err := fx.svc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerID: fx.customerID,
	})
	require.NoError(t, err)

	assert.Empty(t, created.Items)
	assert.True(t, created.TotalAmount.IsZero())
}

func TestCreatePaidStampsPaidAt(t *testing.T) {
	fx := newFixture(t)

	created, err := fx.svc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 1}},
		IsPaid:     true,
	})
	require.NoError(t, err)

	assert.True(t, created.IsPaid)
	require.NotNil(t, created.PaidAt)
	assert.WithinDuration(t, time.Now().UTC(), *created.PaidAt, time.Minute)
}

func TestCreateUnknownCustomer(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerID: uuid.NewString(),
	})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestCreateUnknownServicePersistsNothing(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items: []dto.OrderItemInput{
			{ServiceID: fx.washID, Quantity: 1},
			{ServiceID: uuid.NewString(), Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
	assert.Empty(t, fx.repo.orders)
}

func TestCreateValidatesItemInputs(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: "", Quantity: 1}},
	})
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))

	_, err = fx.svc.Create(ctx, dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 0}},
	})
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}

func TestCreateRegeneratesNumberOnCollision(t *testing.T) {
	fx := newFixture(t)
	fx.repo.collisions = 2

	created, err := fx.svc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.OrderNumber)
	assert.Equal(t, 3, fx.repo.creates)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	fx := newFixture(t)
	fx.repo.collisions = 100

	_, err := fx.svc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerID: fx.customerID,
	})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, kindOf(t, err))
}

func TestGetNotFound(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestListRejectsUnknownStatus(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.List(context.Background(), "shipped")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}

func TestUpdateOmittedFieldsUntouched(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{
		CustomerID:    fx.customerID,
		Items:         []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 2}},
		Note:          "hold hangers",
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	status := entity.OrderStatusProcessing
	updated, err := fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusProcessing, updated.Status)
	assert.Equal(t, "hold hangers", updated.Note)
	assert.Equal(t, "cash", updated.PaymentMethod)
	assert.True(t, updated.TotalAmount.Equal(created.TotalAmount))
	assert.Len(t, updated.Items, 1)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{CustomerID: fx.customerID})
	require.NoError(t, err)

	status := "shipped"
	_, err = fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{Status: &status})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}

func TestUpdatePayStampsPaidAtExactlyOnce(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{CustomerID: fx.customerID})
	require.NoError(t, err)

	paid := true
	first, err := fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{IsPaid: &paid})
	require.NoError(t, err)
	require.NotNil(t, first.PaidAt)
	stamp := *first.PaidAt

	// Paying an already-paid order must not move the stamp.
	second, err := fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{IsPaid: &paid})
	require.NoError(t, err)
	require.NotNil(t, second.PaidAt)
	assert.True(t, stamp.Equal(*second.PaidAt))
}

func TestUpdateUnpayKeepsPaidAt(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{CustomerID: fx.customerID, IsPaid: true})
	require.NoError(t, err)
	require.NotNil(t, created.PaidAt)
	stamp := *created.PaidAt

	unpaid := false
	updated, err := fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{IsPaid: &unpaid})
	require.NoError(t, err)

	assert.False(t, updated.IsPaid)
	require.NotNil(t, updated.PaidAt)
	assert.True(t, stamp.Equal(*updated.PaidAt))
}

func TestUpdateNilItemsLeavesCollectionAlone(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 3}},
	})
	require.NoError(t, err)

	note := "leave at reception"
	updated, err := fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{Note: &note})
	require.NoError(t, err)

	assert.Len(t, updated.Items, 1)
	assert.True(t, updated.TotalAmount.Equal(created.TotalAmount))
}

func TestUpdateEmptyItemsClearsAndZeroesTotal(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 3}},
	})
	require.NoError(t, err)

	empty := []dto.OrderItemInput{}
	updated, err := fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{Items: &empty})
	require.NoError(t, err)

	assert.Empty(t, updated.Items)
	assert.True(t, updated.TotalAmount.IsZero(), "got total %s", updated.TotalAmount)
}

func TestUpdateReplacesItemsWholesale(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{
		CustomerID: fx.customerID,
		Items:      []dto.OrderItemInput{{ServiceID: fx.washID, Quantity: 3}},
	})
	require.NoError(t, err)

	replacement := []dto.OrderItemInput{{ServiceID: fx.ironID, Quantity: 2}}
	updated, err := fx.svc.Update(ctx, created.ID, dto.UpdateOrderRequest{Items: &replacement})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, fx.ironID, updated.Items[0].ServiceID)
	// 2 * 1.75
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("3.50")))
}

func TestUpdateNotFound(t *testing.T) {
	fx := newFixture(t)

	note := "nope"
	_, err := fx.svc.Update(context.Background(), uuid.NewString(), dto.UpdateOrderRequest{Note: &note})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestDeleteRemovesOrder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, dto.CreateOrderRequest{CustomerID: fx.customerID})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, created.ID))

	_, err = fx.svc.Get(ctx, created.ID)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))

	err = fx.svc.Delete(ctx, created.ID)
	assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
}

func TestTotalRevenueOnlyCountsPaid(t *testing.T) {
	fx := newFixture(t)
	fx.repo.paid = decimal.RequireFromString("42.75")

	total, err := fx.svc.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("42.75")))
}

func TestRevenueSeriesShape(t *testing.T) {
	fx := newFixture(t)
	now := time.Now()

	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)
	fx.repo.monthly[thisMonth.Format("2006-01")] = orderrepo.MonthlyStats{
		Revenue: decimal.RequireFromString("20.00"), Orders: 4,
	}
	fx.repo.monthly[lastMonth.Format("2006-01")] = orderrepo.MonthlyStats{
		Revenue: decimal.RequireFromString("10.00"), Orders: 2,
	}

	series, err := fx.svc.RevenueSeries(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, series.Labels, 3)
	require.Len(t, series.Revenue, 3)
	require.Len(t, series.Orders, 3)

	// Oldest first, current month last.
	assert.Equal(t, thisMonth.Format("Jan"), series.Labels[2])
	assert.Equal(t, lastMonth.Format("Jan"), series.Labels[1])
	assert.True(t, series.Revenue[2].Equal(decimal.RequireFromString("20.00")))
	assert.True(t, series.Revenue[1].Equal(decimal.RequireFromString("10.00")))
	assert.True(t, series.Revenue[0].IsZero())
	assert.Equal(t, 4, series.Orders[2])
	assert.Equal(t, 2, series.Orders[1])
	assert.Equal(t, 0, series.Orders[0])
}

func TestRevenueSeriesDefaultsWindow(t *testing.T) {
	fx := newFixture(t)

	series, err := fx.svc.RevenueSeries(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, series.Labels, 6)
}

func TestRevenueSeriesRejectsOversizedWindow(t *testing.T) {
	fx := newFixture(t)

	series, err := fx.svc.RevenueSeries(context.Background(), 60)
	require.NoError(t, err)
	assert.Len(t, series.Labels, 60)

	_, err = fx.svc.RevenueSeries(context.Background(), 61)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))

	_, err = fx.svc.RevenueSeries(context.Background(), 100000)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
}
