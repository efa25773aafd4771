package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order statuses as stored in the database.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a customer's request for laundry services with a computed total
// and fulfilment/payment state. Items are owned exclusively by the order.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID            string          `bun:"id,pk"`
	OrderNumber   string          `bun:"order_number"`
	CustomerID    string          `bun:"customer_id"`
	Customer      *Customer       `bun:"rel:belongs-to,join:customer_id=id"`
	Items         []*OrderItem    `bun:"rel:has-many,join:id=order_id"`
	TotalAmount   decimal.Decimal `bun:"total_amount,type:numeric(10,2)"`
	Status        string          `bun:"status"`
	Note          string          `bun:"note,nullzero"`
	PaymentMethod string          `bun:"payment_method,nullzero"`
	IsPaid        bool            `bun:"is_paid"`
	PaidAt        *time.Time      `bun:"paid_at,nullzero"`
	DeliveryDate  *time.Time      `bun:"delivery_date,nullzero"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero"`
}

// OrderItem binds a catalog service to a quantity with the price frozen at
// the moment the item was added. Total is always price * quantity.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID        string          `bun:"id,pk"`
	OrderID   string          `bun:"order_id"`
	ServiceID string          `bun:"service_id"`
	Service   *Service        `bun:"rel:belongs-to,join:service_id=id"`
	Price     decimal.Decimal `bun:"price,type:numeric(10,2)"`
	Quantity  int             `bun:"quantity"`
	Total     decimal.Decimal `bun:"total,type:numeric(10,2)"`
}
