package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published on the order topic.
const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)

// OrderEvent is emitted when an order is created or paid.
type OrderEvent struct {
	Type        string          `json:"type"`
	ID          string          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	CustomerID  string          `json:"customerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	IsPaid      bool            `json:"isPaid"`
	OccurredAt  time.Time       `json:"occurredAt"`
}
