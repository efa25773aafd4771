package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/launderly/launderly/internal/dto"
	"github.com/launderly/launderly/internal/entity"
	repo "github.com/launderly/launderly/internal/repository/catalog"
	"github.com/launderly/launderly/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/launderly/launderly/service/catalog")

// Service encapsulates business logic around the laundry service catalog.
type Service struct {
	repo   *repo.Repository
	logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(r *repo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: r, logger: logger}
}

// Create adds a catalog entry. Price must be non-negative and the
// estimated time at least one minute.
func (s *Service) Create(ctx context.Context, req dto.CreateServiceRequest) (*entity.Service, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Create", trace.WithAttributes(attribute.String("service.name", req.Name)))
	defer span.End()

	if req.Name == "" {
		return nil, errorbank.Validation("name", "is required")
	}
	if req.Price.IsNegative() {
		return nil, errorbank.Validation("price", "must not be negative")
	}
	if req.EstimatedTime < 1 {
		return nil, errorbank.Validation("estimatedTime", "must be at least one minute")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now().UTC()
	svc := &entity.Service{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		IsActive:      active,
		EstimatedTime: req.EstimatedTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create service", errorbank.WithCause(err))
	}
	return svc, nil
}

// Get retrieves a catalog entry by id.
func (s *Service) Get(ctx context.Context, id string) (*entity.Service, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFoundEntity("Service", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load service", errorbank.WithCause(err))
	}
	return svc, nil
}

// List returns catalog entries, optionally only the active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*entity.Service, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.List")
	defer span.End()

	services, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list services", errorbank.WithCause(err))
	}
	return services, nil
}

// Update applies a partial patch to a catalog entry.
func (s *Service) Update(ctx context.Context, id string, patch dto.UpdateServiceRequest) (*entity.Service, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Update", trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, errorbank.Validation("name", "must not be empty")
		}
		svc.Name = *patch.Name
	}
	if patch.Description != nil {
		svc.Description = *patch.Description
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, errorbank.Validation("price", "must not be negative")
		}
		svc.Price = *patch.Price
	}
	if patch.IsActive != nil {
		svc.IsActive = *patch.IsActive
	}
	if patch.EstimatedTime != nil {
		if *patch.EstimatedTime < 1 {
			return nil, errorbank.Validation("estimatedTime", "must be at least one minute")
		}
		svc.EstimatedTime = *patch.EstimatedTime
	}
	svc.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, svc); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFoundEntity("Service", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update service", errorbank.WithCause(err))
	}
	return svc, nil
}

// Delete removes a catalog entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Delete", trace.WithAttributes(attribute.String("service.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFoundEntity("Service", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete service", errorbank.WithCause(err))
	}
	return nil
}

// Count returns the total number of catalog entries.
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errorbank.Internal("failed to count services", errorbank.WithCause(err))
	}
	return count, nil
}
