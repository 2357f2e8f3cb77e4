package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput carries the mutable product fields for create and update.
type ProductInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	Stock       int
	Image       string
}

// ProductView is a product annotated with the owning seller's public info.
type ProductView struct {
	*domain.Product
	Seller *domain.SellerInfo `json:"seller,omitempty"`
}

// CatalogService defines the business logic for the product catalog
type CatalogService interface {
	Create(ctx context.Context, actor domain.Actor, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ProductView, error)
	List(ctx context.Context, category, search string) ([]*ProductView, error)
	Categories() []string
}

type catalogService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, userRepo repository.UserRepository) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// Create adds a product to the acting seller's catalog
func (s *catalogService) Create(ctx context.Context, actor domain.Actor, input ProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleSeller {
		return nil, forbiddenError("only sellers can create products")
	}

	input, err := normalizeProductInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		SellerID:    actor.ID,
		Name:        input.Name,
		Category:    input.Category,
		Price:       input.Price,
		Description: input.Description,
		Stock:       input.Stock,
		Image:       input.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update overwrites the mutable fields of a product owned by the actor
func (s *catalogService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleSeller {
		return nil, forbiddenError("only sellers can update products")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.SellerID != actor.ID {
		return nil, forbiddenError("not your product")
	}

	input, err = normalizeProductInput(input)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Category = input.Category
	product.Price = input.Price
	product.Description = input.Description
	product.Stock = input.Stock
	product.Image = input.Image
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) || errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product owned by the actor. Existing order snapshots
// keep the product's name and price.
func (s *catalogService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if actor.Role != domain.RoleSeller {
		return forbiddenError("only sellers can delete products")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if product.SellerID != actor.ID {
		return forbiddenError("not your product")
	}

	return s.productRepo.Delete(ctx, id)
}

// Get retrieves one product with its seller's public info
func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.annotate(ctx, []*domain.Product{product})
	if err != nil {
		return nil, err
	}

	return views[0], nil
}

// List retrieves products filtered by category and a case-insensitive
// substring search over name and description
func (s *catalogService) List(ctx context.Context, category, search string) ([]*ProductView, error) {
	products, err := s.productRepo.List(ctx, repository.ProductFilter{
		Category: category,
		Search:   search,
	})
	if err != nil {
		return nil, err
	}

	return s.annotate(ctx, products)
}

// Categories returns the fixed storefront category list
func (s *catalogService) Categories() []string {
	return []string{
		"Coastal Curry Mixes",
		"Kokum & Masala Blends",
		"Traditional Spice Combos",
		"Ready to Cook Sauces",
		"Fish Curry Base",
		"Veg & Coconut Gravies",
		"Special Spice Pastes",
		"Bamboo & Cane Work",
		"Clay & Terracotta Items",
		"Decor & Utility Crafts",
	}
}

// annotate attaches each product's seller public info in one batch lookup
func (s *catalogService) annotate(ctx context.Context, products []*domain.Product) ([]*ProductView, error) {
	sellerIDs := make([]uuid.UUID, 0, len(products))
	seen := map[uuid.UUID]bool{}
	for _, p := range products {
		if !seen[p.SellerID] {
			seen[p.SellerID] = true
			sellerIDs = append(sellerIDs, p.SellerID)
		}
	}

	sellers, err := s.userRepo.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load sellers: %w", err)
	}

	views := make([]*ProductView, len(products))
	for i, p := range products {
		view := &ProductView{Product: p}
		if seller, ok := sellers[p.SellerID]; ok {
			info := seller.PublicInfo()
			view.Seller = &info
		}
		views[i] = view
	}

	return views, nil
}

// normalizeProductInput trims and bounds-checks the mutable product fields
func normalizeProductInput(input ProductInput) (ProductInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)

	if input.Name == "" || input.Category == "" || input.Description == "" {
		return input, validationError("name, category and description are required")
	}
	if len(input.Name) > domain.MaxProductNameLen {
		return input, validationError("product name too long (max %d chars)", domain.MaxProductNameLen)
	}
	if len(input.Description) > domain.MaxProductDescriptionLen {
		return input, validationError("description too long (max %d chars)", domain.MaxProductDescriptionLen)
	}
	if !input.Price.IsPositive() || input.Price.GreaterThan(domain.MaxProductPrice) {
		return input, validationError("invalid price range")
	}
	if input.Stock < 0 || input.Stock > domain.MaxProductStock {
		return input, validationError("stock must be between 0 and %d", domain.MaxProductStock)
	}

	return input, nil
}
