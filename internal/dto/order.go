package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/launderly/launderly/internal/entity"
)

// OrderItemInput is one requested line of an order.
type OrderItemInput struct {
	ServiceID string `json:"serviceId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the payload for placing a new order.
type CreateOrderRequest struct {
	CustomerID    string           `json:"customerId"`
	Items         []OrderItemInput `json:"items"`
	Note          string           `json:"note,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	IsPaid        bool             `json:"isPaid,omitempty"`
	DeliveryDate  *time.Time       `json:"deliveryDate,omitempty"`
}

// UpdateOrderRequest carries a partial order patch. Pointer fields
// distinguish "omitted" (nil) from "explicitly set"; Items follows the same
// rule for the whole collection: nil leaves items untouched, an empty slice
// clears them, a non-empty slice replaces them wholesale.
type UpdateOrderRequest struct {
	Status        *string           `json:"status"`
	Note          *string           `json:"note"`
	CustomerID    *string           `json:"customerId"`
	PaymentMethod *string           `json:"paymentMethod"`
	DeliveryDate  *time.Time        `json:"deliveryDate"`
	IsPaid        *bool             `json:"isPaid"`
	Items         *[]OrderItemInput `json:"items"`
}

// OrderItemResponse represents one order line as exposed via transport layers.
type OrderItemResponse struct {
	ID        string           `json:"id"`
	ServiceID string           `json:"serviceId"`
	Service   *ServiceResponse `json:"service,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int              `json:"quantity"`
	Total     decimal.Decimal  `json:"total"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	CustomerID    string              `json:"customerId"`
	Customer      *CustomerResponse   `json:"customer,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	Status        string              `json:"status"`
	Note          string              `json:"note,omitempty"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	IsPaid        bool                `json:"isPaid"`
	PaidAt        *time.Time          `json:"paidAt,omitempty"`
	DeliveryDate  *time.Time          `json:"deliveryDate,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// NewOrderResponse maps an order entity (with whatever relations are loaded)
// onto its transport representation.
func NewOrderResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		Items:         make([]OrderItemResponse, 0, len(order.Items)),
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		Note:          order.Note,
		PaymentMethod: order.PaymentMethod,
		IsPaid:        order.IsPaid,
		PaidAt:        order.PaidAt,
		DeliveryDate:  order.DeliveryDate,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.Customer != nil {
		customer := NewCustomerResponse(order.Customer)
		resp.Customer = &customer
	}
	for _, item := range order.Items {
		line := OrderItemResponse{
			ID:        item.ID,
			ServiceID: item.ServiceID,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Total:     item.Total,
		}
		if item.Service != nil {
			svc := NewServiceResponse(item.Service)
			line.Service = &svc
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// NewOrderResponses maps a slice of orders.
func NewOrderResponses(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order))
	}
	return out
}
