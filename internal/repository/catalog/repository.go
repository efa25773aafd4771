package catalog

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

var repoTracer = otel.Tracer("github.com/launderly/launderly/repository/catalog")

// ErrNotFound is returned when a catalog service is missing.
var ErrNotFound = errors.New("service not found")

// Repository encapsulates read/write access for the service catalog.
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

// Create persists a new catalog entry.
func (r *Repository) Create(ctx context.Context, svc *entity.Service) error {
	if svc == nil {
		return errors.New("nil service")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Create", trace.WithAttributes(attribute.String("service.name", svc.Name)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(svc).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a catalog entry by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetByID", trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	svc := new(entity.Service)
	err := r.reader.NewSelect().Model(svc).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return svc, nil
}

// List returns catalog entries, optionally only active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*entity.Service, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.List", trace.WithAttributes(attribute.Bool("service.active_only", activeOnly)))
	defer span.End()

	var services []*entity.Service
	q := r.reader.NewSelect().Model(&services).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return services, nil
}

// Update persists changes to an existing catalog entry.
func (r *Repository) Update(ctx context.Context, svc *entity.Service) error {
	if svc == nil {
		return errors.New("nil service")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Update", trace.WithAttributes(attribute.String("service.id", svc.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(svc).WherePK().Exec(ctx)
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

// Delete removes a catalog entry.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Delete", trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.Service)(nil)).
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

// Count returns the total number of catalog entries.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.Count")
	defer span.End()

	count, err := r.reader.NewSelect().Model((*entity.Service)(nil)).Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return count, nil
}
