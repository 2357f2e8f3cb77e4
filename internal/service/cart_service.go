package service

import (
	"context"
	"fmt"
	"time"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the business logic for the buyer's cart
type CartService interface {
	Items(ctx context.Context, actor domain.Actor) ([]*domain.CartItem, error)
	Add(ctx context.Context, actor domain.Actor, productID uuid.UUID, quantity int) ([]*domain.CartItem, error)
	Remove(ctx context.Context, actor domain.Actor, productID uuid.UUID) ([]*domain.CartItem, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Items returns the buyer's cart lines in insertion order
func (s *cartService) Items(ctx context.Context, actor domain.Actor) ([]*domain.CartItem, error) {
	if actor.Role != domain.RoleBuyer {
		return nil, forbiddenError("only buyers have a cart")
	}
	return s.cartRepo.ListByUser(ctx, actor.ID)
}

// Add upserts a cart line. The new quantity is the existing line quantity
// plus the requested one and must not exceed the product's live stock. The
// line snapshots the product's current name and price, so the cart reflects
// the price at last add; the snapshot is not re-validated afterwards.
func (s *cartService) Add(ctx context.Context, actor domain.Actor, productID uuid.UUID, quantity int) ([]*domain.CartItem, error) {
	if actor.Role != domain.RoleBuyer {
		return nil, forbiddenError("only buyers have a cart")
	}
	if quantity <= 0 {
		return nil, validationError("quantity must be a positive integer")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.FindItem(ctx, actor.ID, productID)
	if err != nil && err != repository.ErrCartItemNotFound {
		return nil, fmt.Errorf("failed to read cart line: %w", err)
	}

	current := 0
	if existing != nil {
		current = existing.Quantity
	}
	newQuantity := current + quantity

	if newQuantity > product.Stock {
		return nil, fmt.Errorf("%w for %s: available %d, requested %d",
			repository.ErrInsufficientStock, product.Name, product.Stock, newQuantity)
	}

	item := &domain.CartItem{
		UserID:    actor.ID,
		ProductID: productID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  newQuantity,
		AddedAt:   time.Now(),
	}
	if existing != nil {
		// Refresh the snapshot but keep the line's position in the cart.
		item.AddedAt = existing.AddedAt
	}

	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}

	return s.cartRepo.ListByUser(ctx, actor.ID)
}

// Remove deletes a cart line. Removing an absent line is a no-op.
func (s *cartService) Remove(ctx context.Context, actor domain.Actor, productID uuid.UUID) ([]*domain.CartItem, error) {
	if actor.Role != domain.RoleBuyer {
		return nil, forbiddenError("only buyers have a cart")
	}

	if err := s.cartRepo.RemoveItem(ctx, actor.ID, productID); err != nil {
		return nil, err
	}

	return s.cartRepo.ListByUser(ctx, actor.ID)
}
