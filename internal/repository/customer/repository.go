package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/launderly/launderly/internal/database"
	"github.com/launderly/launderly/internal/entity"
)

var repoTracer = otel.Tracer("github.com/launderly/launderly/repository/customer")

// ErrNotFound is returned when a customer is missing.
var ErrNotFound = errors.New("customer not found")

// Repository encapsulates read/write access for customers.
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

// Create persists a new customer.
func (r *Repository) Create(ctx context.Context, customer *entity.Customer) error {
	if customer == nil {
		return errors.New("nil customer")
	}
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Create", trace.WithAttributes(attribute.String("customer.email", customer.Email)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(customer).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a customer with their orders attached.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.GetByID", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer := new(entity.Customer)
	err := r.reader.NewSelect().
		Model(customer).
		Relation("Orders").
		Where("id = ?", id).
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
	return customer, nil
}

// List returns all customers ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context) ([]*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.List")
	defer span.End()

	var customers []*entity.Customer
	err := r.reader.NewSelect().
		Model(&customers).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return customers, nil
}

// ExistsByEmail reports whether a customer with the email already exists,
// excluding the given id (pass "" when creating).
func (r *Repository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.ExistsByEmail")
	defer span.End()

	q := r.reader.NewSelect().
		Model((*entity.Customer)(nil)).
		Where("email = ?", email)
	if excludeID != "" {
		q = q.Where("id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists failed")
		return false, err
	}
	return exists, nil
}

// Update persists changes to an existing customer.
func (r *Repository) Update(ctx context.Context, customer *entity.Customer) error {
	if customer == nil {
		return errors.New("nil customer")
	}
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Update", trace.WithAttributes(attribute.String("customer.id", customer.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(customer).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
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
}

// Delete removes a customer.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Delete", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.Customer)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
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
}

// Count returns the total number of customers.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Count")
	defer span.End()

	count, err := r.reader.NewSelect().Model((*entity.Customer)(nil)).Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return count, nil
}

// Search matches term case-insensitively against name, email, and phone.
func (r *Repository) Search(ctx context.Context, term string) ([]*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Search")
	defer span.End()

	pattern := "%" + term + "%"
	var customers []*entity.Customer
	err := r.reader.NewSelect().
		Model(&customers).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(first_name) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(last_name) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(email) LIKE LOWER(?)", pattern).
				WhereOr("phone LIKE ?", pattern)
		}).
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	return customers, nil
}
