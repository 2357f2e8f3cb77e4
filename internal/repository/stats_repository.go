package repository

import (
	"context"
	"database/sql"
	"fmt"

	"coastal-mart/internal/domain"
)

// Overview is the admin dashboard rollup: pure counts, no invariants.
type Overview struct {
	TotalUsers     int `json:"totalUsers"`
	TotalBuyers    int `json:"totalBuyers"`
	TotalSellers   int `json:"totalSellers"`
	TotalProducts  int `json:"totalProducts"`
	TotalOrders    int `json:"totalOrders"`
	PendingOrders  int `json:"pendingOrders"`
	ApprovedOrders int `json:"approvedOrders"`
	ShippedOrders  int `json:"shippedOrders"`
}

// StatsRepository defines the interface for admin aggregate queries
type StatsRepository interface {
	Overview(ctx context.Context) (*Overview, error)
}

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new instance of StatsRepository
func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

// Overview collects the marketplace totals in one round trip
func (r *statsRepository) Overview(ctx context.Context) (*Overview, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE role = $1),
			(SELECT COUNT(*) FROM users WHERE role = $2),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = $3),
			(SELECT COUNT(*) FROM orders WHERE status = $4),
			(SELECT COUNT(*) FROM orders WHERE status = $5)
	`

	overview := &Overview{}
	err := r.db.QueryRowContext(ctx, query,
		domain.RoleBuyer,
		domain.RoleSeller,
		domain.OrderPending,
		domain.OrderApproved,
		domain.OrderShipped,
	).Scan(
		&overview.TotalUsers,
		&overview.TotalBuyers,
		&overview.TotalSellers,
		&overview.TotalProducts,
		&overview.TotalOrders,
		&overview.PendingOrders,
		&overview.ApprovedOrders,
		&overview.ShippedOrders,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", err)
	}

	return overview, nil
}
