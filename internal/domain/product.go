package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bounds enforced on product fields at every mutation.
const (
	MaxProductNameLen        = 80
	MaxProductDescriptionLen = 300
	MaxProductStock          = 10000
)

// MaxProductPrice is the upper bound for a product price.
var MaxProductPrice = decimal.NewFromInt(1000000)

// Product represents a catalog item owned by a single seller.
// (seller_id, name) is unique across the catalog.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SellerID    uuid.UUID       `json:"sellerId" db:"seller_id"`
	Name        string          `json:"name" db:"name"`
	Category    string          `json:"category" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
	Stock       int             `json:"stock" db:"stock"`
	Image       string          `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}
