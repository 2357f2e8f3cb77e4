package repository

import (
	"context"
	"testing"
	"time"

	"coastal-mart/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedOrder(t *testing.T, buyerID, sellerID uuid.UUID, items []domain.OrderItem) *domain.Order {
	t.Helper()

	repo := NewOrderRepository(testDB)
	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		SellerID:        sellerID,
		Items:           items,
		DeliveryAddress: "12 Beach Road, Malvan",
		Status:          domain.OrderPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMode:     domain.PaymentOnline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.TotalAmount = order.Total()
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return order
}

func TestOrderRoundTrip(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	buyer := seedUser(t, domain.RoleBuyer)
	seller := seedUser(t, domain.RoleSeller)
	product := seedListing(t, seller.ID, "Order Jar "+uuid.NewString()[:8], "45.50", 20)

	items := []domain.OrderItem{
		{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: 2},
		{ProductID: uuid.New(), Name: "Snapshot Only", Price: decimal.NewFromInt(30), Quantity: 1},
	}
	order := seedOrder(t, buyer.ID, seller.ID, items)

	retrieved, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}

	if !retrieved.TotalAmount.Equal(decimal.RequireFromString("121.00")) {
		t.Errorf("total = %s, want 121.00", retrieved.TotalAmount)
	}
	if len(retrieved.Items) != 2 {
		t.Fatalf("order has %d items, want 2", len(retrieved.Items))
	}
	// Items come back in insertion order
	if retrieved.Items[0].Name != product.Name || retrieved.Items[1].Name != "Snapshot Only" {
		t.Error("item snapshots lost their order")
	}
	if !retrieved.Items[0].Price.Equal(product.Price) {
		t.Errorf("snapshot price = %s, want %s", retrieved.Items[0].Price, product.Price)
	}
	if retrieved.Status != domain.OrderPending || retrieved.PaymentStatus != domain.PaymentPending {
		t.Error("fresh order not pending/pending")
	}
	if retrieved.EstimatedShipDate != nil || retrieved.ShippedAt != nil {
		t.Error("fresh order carries shipping timestamps")
	}

	if _, err := repo.FindByID(ctx, uuid.New()); err != ErrOrderNotFound {
		t.Errorf("unknown order: got %v, want ErrOrderNotFound", err)
	}
}

func TestOrderSnapshotsSurviveProductDeletion(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	ctx := context.Background()

	buyer := seedUser(t, domain.RoleBuyer)
	seller := seedUser(t, domain.RoleSeller)
	product := seedListing(t, seller.ID, "Doomed Listing "+uuid.NewString()[:8], "80.00", 5)

	order := seedOrder(t, buyer.ID, seller.ID, []domain.OrderItem{
		{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: 1},
	})

	if err := productRepo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	retrieved, err := orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find after product deletion failed: %v", err)
	}
	if len(retrieved.Items) != 1 || retrieved.Items[0].Name != product.Name {
		t.Error("item snapshot lost after product deletion")
	}
	if !retrieved.Items[0].Price.Equal(product.Price) {
		t.Error("snapshot price lost after product deletion")
	}
}

func TestOrderLifecycleUpdates(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	buyer := seedUser(t, domain.RoleBuyer)
	seller := seedUser(t, domain.RoleSeller)
	order := seedOrder(t, buyer.ID, seller.ID, []domain.OrderItem{
		{ProductID: uuid.New(), Name: "Lifecycle Jar", Price: decimal.NewFromInt(100), Quantity: 1},
	})

	// Payment proof upload
	order.PaymentProof = "txn-99887"
	order.PaymentStatus = domain.PaymentUploaded
	order.UpdatedAt = time.Now()
	if err := repo.UpdatePayment(ctx, order); err != nil {
		t.Fatalf("update payment failed: %v", err)
	}

	// Approval
	estimate := time.Now().Add(72 * time.Hour)
	order.Status = domain.OrderApproved
	order.PaymentStatus = domain.PaymentPaid
	order.EstimatedShipDate = &estimate
	order.UpdatedAt = time.Now()
	if err := repo.UpdateApproval(ctx, order); err != nil {
		t.Fatalf("update approval failed: %v", err)
	}

	// Shipping
	shipped := time.Now()
	order.Status = domain.OrderShipped
	order.CourierAgency = "BlueDart"
	order.PartnerNumber = "BD-77"
	order.TrackingID = "TRK-100"
	order.ShippedAt = &shipped
	order.UpdatedAt = shipped
	if err := repo.UpdateTracking(ctx, order); err != nil {
		t.Fatalf("update tracking failed: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if retrieved.Status != domain.OrderShipped || retrieved.PaymentStatus != domain.PaymentPaid {
		t.Errorf("status = %s/%s, want shipped/paid", retrieved.Status, retrieved.PaymentStatus)
	}
	if retrieved.PaymentProof != "txn-99887" {
		t.Error("payment proof lost")
	}
	if retrieved.CourierAgency != "BlueDart" || retrieved.PartnerNumber != "BD-77" || retrieved.TrackingID != "TRK-100" {
		t.Error("tracking metadata lost")
	}
	if retrieved.EstimatedShipDate == nil || retrieved.ShippedAt == nil {
		t.Error("shipping timestamps lost")
	}

	ghost := *order
	ghost.ID = uuid.New()
	if err := repo.UpdateApproval(ctx, &ghost); err != ErrOrderNotFound {
		t.Errorf("update of unknown order: got %v, want ErrOrderNotFound", err)
	}
}

func TestOrderListScoping(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	buyer := seedUser(t, domain.RoleBuyer)
	otherBuyer := seedUser(t, domain.RoleBuyer)
	seller := seedUser(t, domain.RoleSeller)

	item := []domain.OrderItem{
		{ProductID: uuid.New(), Name: "Scoped Jar", Price: decimal.NewFromInt(50), Quantity: 1},
	}
	mine := seedOrder(t, buyer.ID, seller.ID, item)
	seedOrder(t, otherBuyer.ID, seller.ID, item)

	byBuyer, err := repo.ListByBuyer(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("list by buyer failed: %v", err)
	}
	if len(byBuyer) != 1 || byBuyer[0].ID != mine.ID {
		t.Errorf("buyer list returned %d orders, want only their own", len(byBuyer))
	}
	if len(byBuyer[0].Items) != 1 {
		t.Error("listed order missing its items")
	}

	bySeller, err := repo.ListBySeller(ctx, seller.ID)
	if err != nil {
		t.Fatalf("list by seller failed: %v", err)
	}
	if len(bySeller) != 2 {
		t.Errorf("seller list returned %d orders, want 2", len(bySeller))
	}
}
