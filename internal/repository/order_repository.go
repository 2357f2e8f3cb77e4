package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coastal-mart/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

const orderColumns = `id, buyer_id, seller_id, total_amount, delivery_address, status,
	payment_status, payment_mode, payment_proof, courier_agency, partner_number,
	tracking_id, estimated_ship_date, shipped_at, created_at, updated_at`

// OrderRepository defines the interface for order data access. Item
// snapshots are immutable after Create; the Update* methods touch only the
// order header.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdatePayment(ctx context.Context, order *domain.Order) error
	UpdateApproval(ctx context.Context, order *domain.Order) error
	UpdateTracking(ctx context.Context, order *domain.Order) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts an order and its item snapshots in a single transaction
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, seller_id, total_amount, delivery_address,
			status, payment_status, payment_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		order.ID,
		order.BuyerID,
		order.SellerID,
		order.TotalAmount,
		order.DeliveryAddress,
		order.Status,
		order.PaymentStatus,
		order.PaymentMode,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`,
			order.ID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its item snapshots
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListByBuyer returns a buyer's orders, newest first
func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query, buyerID)
}

// ListBySeller returns a seller's orders, newest first
func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE seller_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query, sellerID)
}

// ListAll returns every order, newest first
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query)
}

// UpdatePayment persists payment proof, status and mode
func (r *orderRepository) UpdatePayment(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET payment_proof = $2, payment_status = $3, payment_mode = $4, updated_at = $5
		WHERE id = $1
	`
	return r.exec(ctx, query,
		order.ID,
		nullString(order.PaymentProof),
		order.PaymentStatus,
		order.PaymentMode,
		order.UpdatedAt,
	)
}

// UpdateApproval persists the approval transition
func (r *orderRepository) UpdateApproval(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, estimated_ship_date = $4, updated_at = $5
		WHERE id = $1
	`
	return r.exec(ctx, query,
		order.ID,
		order.Status,
		order.PaymentStatus,
		order.EstimatedShipDate,
		order.UpdatedAt,
	)
}

// UpdateTracking persists the shipped transition and shipping metadata
func (r *orderRepository) UpdateTracking(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $2, courier_agency = $3, partner_number = $4, tracking_id = $5,
		    estimated_ship_date = $6, shipped_at = $7, updated_at = $8
		WHERE id = $1
	`
	return r.exec(ctx, query,
		order.ID,
		order.Status,
		nullString(order.CourierAgency),
		nullString(order.PartnerNumber),
		nullString(order.TrackingID),
		order.EstimatedShipDate,
		order.ShippedAt,
		order.UpdatedAt,
	)
}

func (r *orderRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var paymentProof, courierAgency, partnerNumber, trackingID sql.NullString
	var estimatedShipDate, shippedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.BuyerID,
		&order.SellerID,
		&order.TotalAmount,
		&order.DeliveryAddress,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMode,
		&paymentProof,
		&courierAgency,
		&partnerNumber,
		&trackingID,
		&estimatedShipDate,
		&shippedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	order.PaymentProof = paymentProof.String
	order.CourierAgency = courierAgency.String
	order.PartnerNumber = partnerNumber.String
	order.TrackingID = trackingID.String
	if estimatedShipDate.Valid {
		t := estimatedShipDate.Time
		order.EstimatedShipDate = &t
	}
	if shippedAt.Valid {
		t := shippedAt.Time
		order.ShippedAt = &t
	}

	return order, nil
}
