package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Service is a billable catalog entry (wash, dry-clean, ironing, ...).
// EstimatedTime is in minutes.
type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID            string          `bun:"id,pk"`
	Name          string          `bun:"name"`
	Description   string          `bun:"description,nullzero"`
	Price         decimal.Decimal `bun:"price,type:numeric(10,2)"`
	IsActive      bool            `bun:"is_active"`
	EstimatedTime int             `bun:"estimated_time"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero"`
}
