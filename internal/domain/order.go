package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order. Transitions move forward
// only: pending -> approved -> shipped. Delivered and cancelled are declared
// terminal states with no producing operation yet.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderApproved  OrderStatus = "approved"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks the buyer's payment for an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentUploaded PaymentStatus = "uploaded"
)

// PaymentMode selects how the buyer pays.
type PaymentMode string

const (
	PaymentOnline PaymentMode = "ONLINE"
	PaymentCOD    PaymentMode = "COD"
)

// OrderItem is an immutable snapshot of a cart line at checkout time.
type OrderItem struct {
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// Order is a single-seller order produced by checkout. A cart spanning N
// sellers produces N orders.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	BuyerID           uuid.UUID       `json:"buyerId" db:"buyer_id"`
	SellerID          uuid.UUID       `json:"sellerId" db:"seller_id"`
	Items             []OrderItem     `json:"items"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	DeliveryAddress   string          `json:"deliveryAddress" db:"delivery_address"`
	Status            OrderStatus     `json:"status" db:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	PaymentMode       PaymentMode     `json:"paymentMode" db:"payment_mode"`
	PaymentProof      string          `json:"-" db:"payment_proof"`
	CourierAgency     string          `json:"courierAgency,omitempty" db:"courier_agency"`
	PartnerNumber     string          `json:"partnerNumber,omitempty" db:"partner_number"`
	TrackingID        string          `json:"trackingId,omitempty" db:"tracking_id"`
	EstimatedShipDate *time.Time      `json:"estimatedShipDate,omitempty" db:"estimated_ship_date"`
	ShippedAt         *time.Time      `json:"shippedAt,omitempty" db:"shipped_at"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// Total recomputes the order total from its item snapshots.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
