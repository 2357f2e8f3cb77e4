package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func seedProduct(repo *mockProductRepository, sellerID uuid.UUID, name string, price int64, stock int) *domain.Product {
	product := &domain.Product{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Name:        name,
		Category:    "Traditional Spice Combos",
		Price:       decimal.NewFromInt(price),
		Description: "test listing",
		Stock:       stock,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	repo.products[product.ID] = product
	return product
}

func TestProperty_CartAddAccumulatesWithinStock(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("repeated adds accumulate and never exceed stock", prop.ForAll(
		func(stock int, adds []int) bool {
			cartRepo := newMockCartRepository()
			productRepo := newMockProductRepository()
			svc := NewCartService(cartRepo, productRepo)
			ctx := context.Background()

			product := seedProduct(productRepo, uuid.New(), "Fish Curry Base", 120, stock)
			buyer := domain.Actor{ID: uuid.New(), Role: domain.RoleBuyer}

			total := 0
			for _, quantity := range adds {
				items, err := svc.Add(ctx, buyer, product.ID, quantity)
				if total+quantity <= stock {
					if err != nil {
						t.Logf("FAIL: add of %d onto %d (stock %d) rejected: %v", quantity, total, stock, err)
						return false
					}
					total += quantity
					if len(items) != 1 || items[0].Quantity != total {
						t.Logf("FAIL: cart quantity %d, want %d", items[0].Quantity, total)
						return false
					}
				} else {
					if !errors.Is(err, repository.ErrInsufficientStock) {
						t.Logf("FAIL: overfull add got %v, want ErrInsufficientStock", err)
						return false
					}
					// A rejected add leaves the line untouched
					line, findErr := cartRepo.FindItem(ctx, buyer.ID, product.ID)
					if total > 0 && (findErr != nil || line.Quantity != total) {
						t.Logf("FAIL: rejected add modified the cart line")
						return false
					}
				}
			}

			return true
		},
		gen.IntRange(1, 50),
		gen.SliceOfN(6, gen.IntRange(1, 15)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartAddValidation(t *testing.T) {
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)
	ctx := context.Background()

	product := seedProduct(productRepo, uuid.New(), "Kokum Syrup", 80, 10)
	buyer := domain.Actor{ID: uuid.New(), Role: domain.RoleBuyer}

	// Exact stock is allowed: 5 then 5 onto stock 10
	if _, err := svc.Add(ctx, buyer, product.ID, 5); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := svc.Add(ctx, buyer, product.ID, 5); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	// One more unit pushes past stock
	if _, err := svc.Add(ctx, buyer, product.ID, 1); !errors.Is(err, repository.ErrInsufficientStock) {
		t.Errorf("over-stock add: got %v, want ErrInsufficientStock", err)
	}

	// Non-positive quantity
	if _, err := svc.Add(ctx, buyer, product.ID, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("zero quantity: got %v, want ErrValidation", err)
	}
	if _, err := svc.Add(ctx, buyer, product.ID, -3); !errors.Is(err, ErrValidation) {
		t.Errorf("negative quantity: got %v, want ErrValidation", err)
	}

	// Unknown product
	if _, err := svc.Add(ctx, buyer, uuid.New(), 1); !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("unknown product: got %v, want ErrProductNotFound", err)
	}

	// Sellers have no cart
	seller := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}
	if _, err := svc.Add(ctx, seller, product.ID, 1); !errors.Is(err, ErrForbidden) {
		t.Errorf("seller add: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Items(ctx, seller); !errors.Is(err, ErrForbidden) {
		t.Errorf("seller items: got %v, want ErrForbidden", err)
	}
}

func TestCartSnapshotRefreshesOnAdd(t *testing.T) {
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)
	ctx := context.Background()

	product := seedProduct(productRepo, uuid.New(), "Bamboo Basket", 250, 20)
	buyer := domain.Actor{ID: uuid.New(), Role: domain.RoleBuyer}

	if _, err := svc.Add(ctx, buyer, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	// Seller raises the price; the line still shows the old snapshot
	productRepo.products[product.ID].Price = decimal.NewFromInt(300)

	items, err := svc.Items(ctx, buyer)
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if !items[0].Price.Equal(decimal.NewFromInt(250)) {
		t.Errorf("price snapshot = %s, want 250 before re-add", items[0].Price)
	}

	// Re-adding refreshes the snapshot to the live price
	items, err = svc.Add(ctx, buyer, product.ID, 1)
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	if !items[0].Price.Equal(decimal.NewFromInt(300)) {
		t.Errorf("price snapshot = %s, want 300 after re-add", items[0].Price)
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", items[0].Quantity)
	}
}

func TestCartLineKeepsPositionAcrossReAdd(t *testing.T) {
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)
	ctx := context.Background()

	sellerID := uuid.New()
	first := seedProduct(productRepo, sellerID, "Clay Pot", 150, 20)
	second := seedProduct(productRepo, sellerID, "Cane Tray", 90, 20)
	buyer := domain.Actor{ID: uuid.New(), Role: domain.RoleBuyer}

	if _, err := svc.Add(ctx, buyer, first.ID, 1); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := svc.Add(ctx, buyer, second.ID, 1); err != nil {
		t.Fatalf("add second: %v", err)
	}

	// Bumping the first line's quantity must not move it to the back
	items, err := svc.Add(ctx, buyer, first.ID, 2)
	if err != nil {
		t.Fatalf("re-add first: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("cart has %d lines, want 2", len(items))
	}
	if items[0].ProductID != first.ID {
		t.Errorf("first line is %s, want the originally added product", items[0].Name)
	}
	if items[0].Quantity != 3 {
		t.Errorf("first line quantity = %d, want 3", items[0].Quantity)
	}
}

func TestCartRemove(t *testing.T) {
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)
	ctx := context.Background()

	product := seedProduct(productRepo, uuid.New(), "Veg Gravy Mix", 60, 10)
	buyer := domain.Actor{ID: uuid.New(), Role: domain.RoleBuyer}

	if _, err := svc.Add(ctx, buyer, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items, err := svc.Remove(ctx, buyer, product.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("cart has %d lines after remove, want 0", len(items))
	}

	// Removing an absent line is a no-op
	if _, err := svc.Remove(ctx, buyer, product.ID); err != nil {
		t.Errorf("second remove: %v, want nil", err)
	}
}
