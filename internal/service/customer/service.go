package customer

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
	repo "github.com/launderly/launderly/internal/repository/customer"
	"github.com/launderly/launderly/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/launderly/launderly/service/customer")

// Service encapsulates business logic around customers.
type Service struct {
	repo   *repo.Repository
	logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(r *repo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: r, logger: logger}
}

// Create registers a new customer; the email must not already be in use.
func (s *Service) Create(ctx context.Context, req dto.CreateCustomerRequest) (*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Create", trace.WithAttributes(attribute.String("customer.email", req.Email)))
	defer span.End()

	if req.FirstName == "" {
		return nil, errorbank.Validation("firstName", "is required")
	}
	if req.Email == "" {
		return nil, errorbank.Validation("email", "is required")
	}

	taken, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to check email", errorbank.WithCause(err))
	}
	if taken {
		return nil, errorbank.Conflict("customer with this email already exists")
	}

	now := time.Now().UTC()
	customer := &entity.Customer{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// Get retrieves a customer by id, with their orders attached.
func (s *Service) Get(ctx context.Context, id string) (*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Get", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFoundEntity("Customer", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// List returns all customers.
func (s *Service) List(ctx context.Context) ([]*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.List")
	defer span.End()

	customers, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list customers", errorbank.WithCause(err))
	}
	return customers, nil
}

// Update applies a partial patch; changing the email re-checks uniqueness.
func (s *Service) Update(ctx context.Context, id string, patch dto.UpdateCustomerRequest) (*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Update", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != customer.Email {
		if *patch.Email == "" {
			return nil, errorbank.Validation("email", "must not be empty")
		}
		taken, err := s.repo.ExistsByEmail(ctx, *patch.Email, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to check email", errorbank.WithCause(err))
		}
		if taken {
			return nil, errorbank.Conflict("email already in use")
		}
		customer.Email = *patch.Email
	}
	if patch.FirstName != nil {
		customer.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		customer.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		customer.Phone = *patch.Phone
	}
	if patch.Address != nil {
		customer.Address = *patch.Address
	}
	customer.UpdatedAt = time.Now().UTC()
	customer.Orders = nil

	if err := s.repo.Update(ctx, customer); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFoundEntity("Customer", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Delete", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFoundEntity("Customer", id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete customer", errorbank.WithCause(err))
	}
	return nil
}

// Search finds customers by name, email, or phone substring.
func (s *Service) Search(ctx context.Context, term string) ([]*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Search")
	defer span.End()

	if term == "" {
		return s.List(ctx)
	}
	customers, err := s.repo.Search(ctx, term)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to search customers", errorbank.WithCause(err))
	}
	return customers, nil
}

// Count returns the total number of customers.
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errorbank.Internal("failed to count customers", errorbank.WithCause(err))
	}
	return count, nil
}
