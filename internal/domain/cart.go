package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a buyer's cart. Name and price are snapshots taken
// when the line was first added; they are not refreshed when the product
// changes afterwards. There is at most one line per (user, product) pair and
// lines keep their insertion order across quantity updates.
type CartItem struct {
	UserID    uuid.UUID       `json:"-" db:"user_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	AddedAt   time.Time       `json:"-" db:"added_at"`
}
