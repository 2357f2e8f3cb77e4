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
)

// How far out the shipping estimate is set on approval and on shipping.
const shipEstimateLead = 3 * 24 * time.Hour

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingAddress   = errors.New("delivery address required")
	ErrAlreadyApproved  = errors.New("order is already approved")
	ErrOrderNotApproved = errors.New("order must be approved before it can ship")
	ErrProofRequired    = errors.New("payment proof is required for online payment")
)

// OrderView is an order annotated with the seller's public contact and
// payment info.
type OrderView struct {
	*domain.Order
	Seller *domain.SellerInfo `json:"seller,omitempty"`
}

// OrderService drives the order lifecycle: checkout, payment submission,
// approval and shipping.
type OrderService interface {
	Checkout(ctx context.Context, actor domain.Actor, deliveryAddress string, mode domain.PaymentMode) ([]*OrderView, error)
	SubmitPayment(ctx context.Context, actor domain.Actor, orderID uuid.UUID, mode domain.PaymentMode, proof string) (*OrderView, error)
	Approve(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*OrderView, error)
	AddTracking(ctx context.Context, actor domain.Actor, orderID uuid.UUID, courierAgency, partnerNumber, trackingID string) (*OrderView, error)
	List(ctx context.Context, actor domain.Actor) ([]*OrderView, error)
	Get(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*OrderView, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// sellerBucket groups a checkout's cart lines by owning seller. Each bucket
// becomes one order.
type sellerBucket struct {
	sellerID uuid.UUID
	items    []domain.OrderItem
}

// Checkout converts the buyer's cart into one order per distinct seller.
//
// The flow is validate-everything, decrement-everything, create-orders,
// clear-cart. Oversell under concurrent checkouts is prevented by the
// repository's atomic compare-and-decrement; if a decrement still fails
// mid-loop (stock dropped between validation and decrement), the lines
// already decremented are incremented back and no order is created, so the
// operation stays all-or-nothing across sellers.
func (s *orderService) Checkout(ctx context.Context, actor domain.Actor, deliveryAddress string, mode domain.PaymentMode) ([]*OrderView, error) {
	if actor.Role != domain.RoleBuyer {
		return nil, forbiddenError("only buyers can place orders")
	}

	lines, err := s.cartRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	if strings.TrimSpace(deliveryAddress) == "" {
		return nil, ErrMissingAddress
	}

	if mode == "" {
		mode = domain.PaymentOnline
	}
	if mode != domain.PaymentOnline && mode != domain.PaymentCOD {
		return nil, validationError("invalid payment mode %q", mode)
	}

	// Re-validate every line against the live product and bucket by seller,
	// keeping first-seen seller order.
	buckets := []*sellerBucket{}
	bucketBySeller := map[uuid.UUID]*sellerBucket{}
	for _, line := range lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s no longer exists: %w", line.Name, err)
			}
			return nil, err
		}

		if line.Quantity > product.Stock {
			return nil, fmt.Errorf("%w for %s: available %d, requested %d",
				repository.ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
		}

		bucket, ok := bucketBySeller[product.SellerID]
		if !ok {
			bucket = &sellerBucket{sellerID: product.SellerID}
			bucketBySeller[product.SellerID] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.items = append(bucket.items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	// Decrement stock for every line. Validation just passed, so a failure
	// here means a concurrent checkout won the race; undo what we took.
	decremented := []stockTake{}
	for _, line := range lines {
		if err := s.productRepo.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			if compErr := s.restoreStock(ctx, decremented); compErr != nil {
				return nil, errors.Join(err, compErr)
			}
			return nil, err
		}
		decremented = append(decremented, stockTake{productID: line.ProductID, quantity: line.Quantity})
	}

	sellers, err := s.loadSellers(ctx, buckets)
	if err != nil {
		return nil, err
	}

	// Create one order per seller bucket. A failure past this point leaves
	// stock decremented for the failed bucket; that window is a known gap of
	// the decrement-then-create sequence.
	now := time.Now()
	views := make([]*OrderView, 0, len(buckets))
	for _, bucket := range buckets {
		order := &domain.Order{
			ID:              uuid.New(),
			BuyerID:         actor.ID,
			SellerID:        bucket.sellerID,
			Items:           bucket.items,
			DeliveryAddress: deliveryAddress,
			Status:          domain.OrderPending,
			PaymentStatus:   domain.PaymentPending,
			PaymentMode:     mode,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		order.TotalAmount = order.Total()

		if err := s.orderRepo.Create(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to create order for seller %s: %w", bucket.sellerID, err)
		}

		views = append(views, s.view(order, sellers[bucket.sellerID]))
	}

	if err := s.cartRepo.Clear(ctx, actor.ID); err != nil {
		return nil, err
	}

	return views, nil
}

// SubmitPayment records the buyer's payment evidence on an order. ONLINE
// payments require a proof payload and move paymentStatus to uploaded
// (pending seller verification); COD stays pending until approval. The
// order status itself does not change.
func (s *orderService) SubmitPayment(ctx context.Context, actor domain.Actor, orderID uuid.UUID, mode domain.PaymentMode, proof string) (*OrderView, error) {
	if actor.Role != domain.RoleBuyer {
		return nil, forbiddenError("only buyers can submit payments")
	}

	if mode == "" {
		mode = domain.PaymentOnline
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// An order belonging to someone else is indistinguishable from a
	// missing one.
	if order.BuyerID != actor.ID {
		return nil, repository.ErrOrderNotFound
	}

	switch mode {
	case domain.PaymentOnline:
		if proof == "" {
			return nil, ErrProofRequired
		}
		order.PaymentProof = proof
		order.PaymentStatus = domain.PaymentUploaded
	case domain.PaymentCOD:
		order.PaymentProof = ""
		order.PaymentStatus = domain.PaymentPending
	default:
		return nil, validationError("invalid payment mode %q", mode)
	}
	order.PaymentMode = mode
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.UpdatePayment(ctx, order); err != nil {
		return nil, err
	}

	return s.viewWithSeller(ctx, order)
}

// Approve moves a pending order to approved after re-validating that every
// line still fits within live stock. Approving twice is rejected, not a
// no-op: the second call fails with ErrAlreadyApproved and changes nothing.
func (s *orderService) Approve(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.ownedBySeller(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderPending {
		return nil, ErrAlreadyApproved
	}

	// Second stock check, independent of checkout's: stock may have been
	// edited down by the seller since the order was placed.
	for _, item := range order.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s no longer exists: %w", item.Name, err)
			}
			return nil, err
		}
		if item.Quantity > product.Stock {
			return nil, fmt.Errorf("%w for %s: available %d, ordered %d",
				repository.ErrInsufficientStock, item.Name, product.Stock, item.Quantity)
		}
	}

	estimate := time.Now().Add(shipEstimateLead)
	order.Status = domain.OrderApproved
	order.PaymentStatus = domain.PaymentPaid
	order.EstimatedShipDate = &estimate
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.UpdateApproval(ctx, order); err != nil {
		return nil, err
	}

	return s.viewWithSeller(ctx, order)
}

// AddTracking records shipping metadata and moves an approved order to
// shipped. The approval requirement is deliberate: a pending order cannot
// jump straight to shipped. The shipping estimate is recomputed, replacing
// the approval-time one.
func (s *orderService) AddTracking(ctx context.Context, actor domain.Actor, orderID uuid.UUID, courierAgency, partnerNumber, trackingID string) (*OrderView, error) {
	order, err := s.ownedBySeller(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderApproved {
		return nil, ErrOrderNotApproved
	}

	if strings.TrimSpace(courierAgency) == "" || strings.TrimSpace(partnerNumber) == "" {
		return nil, validationError("courier agency and partner number are required")
	}

	now := time.Now()
	estimate := now.Add(shipEstimateLead)
	order.CourierAgency = courierAgency
	order.PartnerNumber = partnerNumber
	order.TrackingID = trackingID
	order.Status = domain.OrderShipped
	order.ShippedAt = &now
	order.EstimatedShipDate = &estimate
	order.UpdatedAt = now

	if err := s.orderRepo.UpdateTracking(ctx, order); err != nil {
		return nil, err
	}

	return s.viewWithSeller(ctx, order)
}

// List returns the orders visible to the actor: buyers see their own,
// sellers see orders on their products, admins see everything.
func (s *orderService) List(ctx context.Context, actor domain.Actor) ([]*OrderView, error) {
	var orders []*domain.Order
	var err error

	switch actor.Role {
	case domain.RoleBuyer:
		orders, err = s.orderRepo.ListByBuyer(ctx, actor.ID)
	case domain.RoleSeller:
		orders, err = s.orderRepo.ListBySeller(ctx, actor.ID)
	case domain.RoleAdmin:
		orders, err = s.orderRepo.ListAll(ctx)
	default:
		return nil, forbiddenError("unknown role %q", actor.Role)
	}
	if err != nil {
		return nil, err
	}

	sellerIDs := make([]uuid.UUID, 0, len(orders))
	seen := map[uuid.UUID]bool{}
	for _, order := range orders {
		if !seen[order.SellerID] {
			seen[order.SellerID] = true
			sellerIDs = append(sellerIDs, order.SellerID)
		}
	}
	sellers, err := s.userRepo.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load sellers: %w", err)
	}

	views := make([]*OrderView, len(orders))
	for i, order := range orders {
		views[i] = s.view(order, sellers[order.SellerID])
	}

	return views, nil
}

// Get returns one order if the actor may see it
func (s *orderService) Get(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleBuyer:
		if order.BuyerID != actor.ID {
			return nil, forbiddenError("access denied")
		}
	case domain.RoleSeller:
		if order.SellerID != actor.ID {
			return nil, forbiddenError("access denied")
		}
	case domain.RoleAdmin:
		// admins see everything
	default:
		return nil, forbiddenError("unknown role %q", actor.Role)
	}

	return s.viewWithSeller(ctx, order)
}

// ownedBySeller loads an order and checks the actor is its selling side
func (s *orderService) ownedBySeller(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	if actor.Role != domain.RoleSeller {
		return nil, forbiddenError("only sellers can manage orders")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.SellerID != actor.ID {
		return nil, forbiddenError("not your order")
	}

	return order, nil
}

// stockTake records one applied decrement so a failed checkout can undo it.
type stockTake struct {
	productID uuid.UUID
	quantity  int
}

// restoreStock compensates a partially applied decrement pass
func (s *orderService) restoreStock(ctx context.Context, taken []stockTake) error {
	var errs []error
	for i := len(taken) - 1; i >= 0; i-- {
		if err := s.productRepo.IncrementStock(ctx, taken[i].productID, taken[i].quantity); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore stock for %s: %w", taken[i].productID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *orderService) loadSellers(ctx context.Context, buckets []*sellerBucket) (map[uuid.UUID]*domain.User, error) {
	ids := make([]uuid.UUID, len(buckets))
	for i, bucket := range buckets {
		ids[i] = bucket.sellerID
	}
	sellers, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load sellers: %w", err)
	}
	return sellers, nil
}

func (s *orderService) viewWithSeller(ctx context.Context, order *domain.Order) (*OrderView, error) {
	sellers, err := s.userRepo.FindByIDs(ctx, []uuid.UUID{order.SellerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}
	return s.view(order, sellers[order.SellerID]), nil
}

func (s *orderService) view(order *domain.Order, seller *domain.User) *OrderView {
	view := &OrderView{Order: order}
	if seller != nil {
		info := seller.PublicInfo()
		view.Seller = &info
	}
	return view
}
