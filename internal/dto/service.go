package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/launderly/launderly/internal/entity"
)

// CreateServiceRequest is the payload for adding a catalog entry.
type CreateServiceRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	IsActive      *bool           `json:"isActive"`
	EstimatedTime int             `json:"estimatedTime"`
}

// UpdateServiceRequest carries a partial catalog patch.
type UpdateServiceRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	IsActive      *bool            `json:"isActive"`
	EstimatedTime *int             `json:"estimatedTime"`
}

// ServiceResponse represents a catalog entry as exposed via transport layers.
type ServiceResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	IsActive      bool            `json:"isActive"`
	EstimatedTime int             `json:"estimatedTime"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewServiceResponse maps a catalog entity onto its transport representation.
func NewServiceResponse(svc *entity.Service) ServiceResponse {
	return ServiceResponse{
		ID:            svc.ID,
		Name:          svc.Name,
		Description:   svc.Description,
		Price:         svc.Price,
		IsActive:      svc.IsActive,
		EstimatedTime: svc.EstimatedTime,
		CreatedAt:     svc.CreatedAt,
		UpdatedAt:     svc.UpdatedAt,
	}
}

// NewServiceResponses maps a slice of catalog entries.
func NewServiceResponses(services []*entity.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		out = append(out, NewServiceResponse(svc))
	}
	return out
}
