package service

import (
	"context"
	"sort"
	"strings"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository doubles shared across the service tests.

type mockUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	result := map[uuid.UUID]*domain.User{}
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			copied := *user
			result[id] = &copied
		}
	}
	return result, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product

	// When set, DecrementStock fails for this product regardless of stock.
	failDecrementFor *uuid.UUID
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, existing := range m.products {
		if existing.SellerID == product.SellerID && existing.Name == product.Name {
			return repository.ErrProductAlreadyExists
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	for _, existing := range m.products {
		if existing.ID != product.ID && existing.SellerID == product.SellerID && existing.Name == product.Name {
			return repository.ErrProductAlreadyExists
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, product := range m.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(product.Name), needle) &&
				!strings.Contains(strings.ToLower(product.Description), needle) {
				continue
			}
		}
		if filter.SellerID != nil && product.SellerID != *filter.SellerID {
			continue
		}
		copied := *product
		products = append(products, &copied)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	product, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if m.failDecrementFor != nil && *m.failDecrementFor == id {
		return repository.ErrInsufficientStock
	}
	if product.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	product.Stock -= quantity
	return nil
}

func (m *mockProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	product, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.Stock += quantity
	return nil
}

type cartKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

type mockCartRepository struct {
	items map[cartKey]*domain.CartItem
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{items: make(map[cartKey]*domain.CartItem)}
}

func (m *mockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	items := []*domain.CartItem{}
	for key, item := range m.items {
		if key.userID == userID {
			copied := *item
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ProductID.String() < items[j].ProductID.String()
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return items, nil
}

func (m *mockCartRepository) FindItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	item, ok := m.items[cartKey{userID, productID}]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *mockCartRepository) UpsertItem(ctx context.Context, item *domain.CartItem) error {
	key := cartKey{item.UserID, item.ProductID}
	if existing, ok := m.items[key]; ok {
		// The stored added_at wins, matching the ON CONFLICT clause.
		item.AddedAt = existing.AddedAt
	}
	copied := *item
	m.items[key] = &copied
	return nil
}

func (m *mockCartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	delete(m.items, cartKey{userID, productID})
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	for key := range m.items {
		if key.userID == userID {
			delete(m.items, key)
		}
	}
	return nil
}

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
	seq    int

	failCreateAfter int // fail Create once seq reaches this count; 0 disables
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.seq++
	if m.failCreateAfter > 0 && m.seq >= m.failCreateAfter {
		return context.DeadlineExceeded
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (m *mockOrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool { return o.BuyerID == buyerID }), nil
}

func (m *mockOrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool { return o.SellerID == sellerID }), nil
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool { return true }), nil
}

func (m *mockOrderRepository) UpdatePayment(ctx context.Context, order *domain.Order) error {
	return m.store(order)
}

func (m *mockOrderRepository) UpdateApproval(ctx context.Context, order *domain.Order) error {
	return m.store(order)
}

func (m *mockOrderRepository) UpdateTracking(ctx context.Context, order *domain.Order) error {
	return m.store(order)
}

func (m *mockOrderRepository) store(order *domain.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) list(match func(*domain.Order) bool) []*domain.Order {
	orders := []*domain.Order{}
	for _, order := range m.orders {
		if match(order) {
			copied := *order
			copied.Items = append([]domain.OrderItem(nil), order.Items...)
			orders = append(orders, &copied)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

type mockResetTokenRepository struct {
	tokens map[string]*domain.PasswordResetToken
}

func newMockResetTokenRepository() *mockResetTokenRepository {
	return &mockResetTokenRepository{tokens: make(map[string]*domain.PasswordResetToken)}
}

func (m *mockResetTokenRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	copied := *token
	m.tokens[token.Token] = &copied
	return nil
}

func (m *mockResetTokenRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	resetToken, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrResetTokenNotFound
	}
	if resetToken.Used {
		return nil, repository.ErrResetTokenUsed
	}
	copied := *resetToken
	return &copied, nil
}

func (m *mockResetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	resetToken, ok := m.tokens[token]
	if !ok {
		return repository.ErrResetTokenNotFound
	}
	resetToken.Used = true
	return nil
}

type mockMailer struct {
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *mockMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
