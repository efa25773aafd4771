package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Customer is the party placing orders. Email is unique.
type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID        string    `bun:"id,pk"`
	FirstName string    `bun:"first_name"`
	LastName  string    `bun:"last_name"`
	Email     string    `bun:"email"`
	Phone     string    `bun:"phone,nullzero"`
	Address   string    `bun:"address,nullzero"`
	Orders    []*Order  `bun:"rel:has-many,join:id=customer_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}
