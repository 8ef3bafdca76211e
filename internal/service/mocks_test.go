package service

import (
	"context"
	"sort"
	"time"

	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories for service tests.

type mockProductRepository struct {
	products map[domain.ProductRef]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[domain.ProductRef]*domain.Product)}
}

func (m *mockProductRepository) add(p *domain.Product) {
	m.products[p.Ref()] = p
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.add(p)
	return nil
}

func (m *mockProductRepository) FindByRef(ctx context.Context, ref domain.ProductRef) (*domain.Product, error) {
	p, ok := m.products[ref]
	if !ok || !p.IsActive {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, kind := range []domain.ProductKind{domain.ProductKindTire, domain.ProductKindWheel} {
		for _, p := range m.products {
			if p.Kind == kind && p.Slug == slug && p.IsActive {
				return p, nil
			}
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByAnyID(ctx context.Context, id int64) (*domain.Product, error) {
	for _, kind := range []domain.ProductKind{domain.ProductKindTire, domain.ProductKindWheel} {
		if p, ok := m.products[domain.ProductRef{Kind: kind, ID: id}]; ok && p.IsActive {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if p.Kind == filter.Kind && p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.PageSize > 0 && len(out) > filter.PageSize {
		out = out[:filter.PageSize]
	}
	return out, len(out), nil
}

func (m *mockProductRepository) findFlagged(kind domain.ProductKind, limit int, pick func(*domain.Product) bool) []*domain.Product {
	var out []*domain.Product
	for _, p := range m.products {
		if p.Kind == kind && p.IsActive && pick(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *mockProductRepository) FindFeatured(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error) {
	return m.findFlagged(kind, limit, func(p *domain.Product) bool { return p.IsFeatured }), nil
}

func (m *mockProductRepository) FindBestsellers(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error) {
	return m.findFlagged(kind, limit, func(p *domain.Product) bool { return p.IsBestseller }), nil
}

func (m *mockProductRepository) FindNewest(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error) {
	return m.findFlagged(kind, limit, func(p *domain.Product) bool { return p.IsNew }), nil
}

type mockOrderRepository struct {
	products *mockProductRepository
	orders   []*domain.Order
	nextID   int64
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{products: products, nextID: 1}
}

// Create mirrors the conditional stock decrement: any short line fails the
// whole order and leaves every stock level untouched.
func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	for _, item := range items {
		p, ok := m.products.products[item.Product]
		if !ok || p.StockQuantity < item.Quantity {
			name := item.ProductName
			return &repository.InsufficientStockError{ProductName: name}
		}
	}
	for _, item := range items {
		p := m.products.products[item.Product]
		p.StockQuantity -= item.Quantity
		p.SalesCount += item.Quantity
	}

	order.ID = m.nextID
	m.nextID++
	order.Items = items
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	return m.orders, len(m.orders), nil
}

type mockCartRepository struct {
	carts  map[uuid.UUID]*domain.Cart
	items  map[int64][]*domain.CartItem
	nextID int64
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{
		carts:  make(map[uuid.UUID]*domain.Cart),
		items:  make(map[int64][]*domain.CartItem),
		nextID: 1,
	}
}

func (m *mockCartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	cart := &domain.Cart{ID: m.nextID, UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.nextID++
	m.carts[userID] = cart
	return cart, nil
}

func (m *mockCartRepository) ListItems(ctx context.Context, cartID int64) ([]*domain.CartItem, error) {
	return m.items[cartID], nil
}

func (m *mockCartRepository) AddItem(ctx context.Context, cartID int64, ref domain.ProductRef, quantity int) (*domain.CartItem, error) {
	for _, item := range m.items[cartID] {
		if item.Product == ref {
			item.Quantity += quantity
			return item, nil
		}
	}
	item := &domain.CartItem{ID: m.nextID, CartID: cartID, Product: ref, Quantity: quantity}
	m.nextID++
	m.items[cartID] = append(m.items[cartID], item)
	return item, nil
}

func (m *mockCartRepository) SetItemQuantity(ctx context.Context, cartID int64, ref domain.ProductRef, quantity int) error {
	for _, item := range m.items[cartID] {
		if item.Product == ref {
			item.Quantity = quantity
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) RemoveItem(ctx context.Context, cartID int64, ref domain.ProductRef) error {
	items := m.items[cartID]
	for i, item := range items {
		if item.Product == ref {
			m.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) Clear(ctx context.Context, cartID int64) error {
	m.items[cartID] = nil
	return nil
}

type mockReviewRepository struct {
	reviews map[int64]*domain.Review
	nextID  int64
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{reviews: make(map[int64]*domain.Review), nextID: 1}
}

func (m *mockReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	for _, existing := range m.reviews {
		if existing.Product == rv.Product && existing.UserID == rv.UserID {
			return repository.ErrReviewAlreadyExists
		}
	}
	rv.ID = m.nextID
	m.nextID++
	m.reviews[rv.ID] = rv
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	rv, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	return rv, nil
}

func (m *mockReviewRepository) ListApprovedForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, rv := range m.reviews {
		if rv.Product == ref && rv.Status == domain.ReviewStatusApproved {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (m *mockReviewRepository) UpdateStatus(ctx context.Context, id int64, status, moderatorComment string) error {
	rv, ok := m.reviews[id]
	if !ok || rv.Status != domain.ReviewStatusPending {
		return repository.ErrReviewNotFound
	}
	rv.Status = status
	rv.ModeratorComment = moderatorComment
	return nil
}

func (m *mockReviewRepository) AddVote(ctx context.Context, id int64, helpful bool) error {
	rv, ok := m.reviews[id]
	if !ok {
		return repository.ErrReviewNotFound
	}
	if helpful {
		rv.HelpfulCount++
	} else {
		rv.NotHelpfulCount++
	}
	return nil
}
