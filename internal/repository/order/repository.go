package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/launderly/launderly/internal/database"
	"github.com/launderly/launderly/internal/entity"
)

var repoTracer = otel.Tracer("github.com/launderly/launderly/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrNumberTaken is returned when the order number is already reserved by
// another order. Callers regenerate and retry.
var ErrNumberTaken = errors.New("order number already taken")

// MonthlyStats carries revenue and order count for one calendar month.
type MonthlyStats struct {
	Revenue decimal.Decimal `bun:"revenue"`
	Orders  int             `bun:"orders"`
}

// Repository encapsulates read/write access for orders and their items.
// All multi-row mutations run inside a single transaction so concurrent
// readers never observe an order whose total disagrees with its items.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists an order and its items in one transaction. The unique
// index on order_number is what reserves the number; a violation, whether
// from an earlier order or a concurrent insert, surfaces as ErrNumberTaken
// so callers can regenerate and retry.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.number", order.OrderNumber)))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			// The only unique constraint reachable here is the order
			// number; ids are fresh UUIDs. Concurrent inserts of the
			// same number both reach this statement, so the constraint
			// is the authority, not a pre-check.
			if isUniqueViolation(err) {
				return ErrNumberTaken
			}
			return err
		}
		if len(order.Items) > 0 {
			if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNumberTaken) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// isUniqueViolation reports whether err is a duplicate-key error from any
// of the supported drivers (postgres SQLSTATE 23505, mysql 1062).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// GetByID fetches an order with its items (each with the resolved service)
// and the owning customer, using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().
		Model(order).
		Relation("Customer").
		Relation("Items").
		Relation("Items.Service").
		Where("o.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns orders newest-first, optionally restricted to one status,
// each with items, services, and customer attached.
func (r *Repository) List(ctx context.Context, status string) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	var orders []*entity.Order
	q := r.reader.NewSelect().
		Model(&orders).
		Relation("Customer").
		Relation("Items").
		Relation("Items.Service").
		Order("o.created_at DESC")
	if status != "" {
		q = q.Where("o.status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// Update persists the order row and, when replaceItems is set, swaps the
// whole item collection, all inside one transaction. order.Items must hold
// the replacement set (possibly empty) when replaceItems is true.
func (r *Repository) Update(ctx context.Context, order *entity.Order, replaceItems bool) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(
		attribute.String("order.id", order.ID),
		attribute.Bool("order.replace_items", replaceItems),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(order).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}

		if !replaceItems {
			return nil
		}

		if _, err := tx.NewDelete().
			Model((*entity.OrderItem)(nil)).
			Where("order_id = ?", order.ID).
			Exec(ctx); err != nil {
			return err
		}
		if len(order.Items) > 0 {
			if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// Delete removes the order and all of its items in one transaction.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*entity.OrderItem)(nil)).
			Where("order_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*entity.Order)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

// Count returns the total number of orders.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Count")
	defer span.End()

	count, err := r.reader.NewSelect().Model((*entity.Order)(nil)).Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return count, nil
}

// CountByStatus returns the number of orders in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status string) (int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CountByStatus", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	count, err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		Where("status = ?", status).
		Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return count, nil
}

// PaidRevenue sums total_amount across paid orders; zero when none exist.
func (r *Repository) PaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.PaidRevenue")
	defer span.End()

	var total decimal.Decimal
	err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		ColumnExpr("COALESCE(SUM(total_amount), 0)").
		Where("is_paid = ?", true).
		Scan(ctx, &total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sum failed")
		return decimal.Zero, err
	}
	return total, nil
}

// MonthRange sums revenue and counts orders created in [start, end).
// Revenue here is not filtered by payment status; the asymmetry with
// PaidRevenue mirrors what the dashboard displays.
func (r *Repository) MonthRange(ctx context.Context, start, end time.Time) (MonthlyStats, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.MonthRange", trace.WithAttributes(
		attribute.String("range.start", start.Format(time.RFC3339)),
		attribute.String("range.end", end.Format(time.RFC3339)),
	))
	defer span.End()

	var stats MonthlyStats
	err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		ColumnExpr("COALESCE(SUM(total_amount), 0) AS revenue").
		ColumnExpr("COUNT(*) AS orders").
		Where("created_at >= ?", start).
		Where("created_at < ?", end).
		Scan(ctx, &stats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate failed")
		return MonthlyStats{}, err
	}
	return stats, nil
}
