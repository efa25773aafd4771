package dto

import (
	"time"

	"github.com/launderly/launderly/internal/entity"
)

// CreateCustomerRequest is the payload for registering a customer.
type CreateCustomerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// UpdateCustomerRequest carries a partial customer patch.
type UpdateCustomerRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// CustomerResponse represents a customer as exposed via transport layers.
type CustomerResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCustomerResponse maps a customer entity onto its transport representation.
func NewCustomerResponse(customer *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Address:   customer.Address,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}

// NewCustomerResponses maps a slice of customers.
func NewCustomerResponses(customers []*entity.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, NewCustomerResponse(customer))
	}
	return out
}
