package service

import (
	"context"
	"fmt"

	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/repository"

	"github.com/google/uuid"
)

// CartItemView is one cart line joined with its live product. Prices are
// always computed from the current catalog, never stored.
type CartItemView struct {
	ID         int64           `json:"id"`
	Product    *domain.Product `json:"product"`
	Quantity   int             `json:"quantity"`
	UnitPrice  float64         `json:"unit_price"`
	TotalPrice float64         `json:"total_price"`
}

// CartView is the computed cart: lines whose product has since been
// removed or deactivated are silently dropped from the view.
type CartView struct {
	ID         int64           `json:"id"`
	Items      []*CartItemView `json:"items"`
	TotalPrice float64         `json:"total_price"`
	TotalItems int             `json:"total_items"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, ref domain.ProductRef, quantity int) (*CartView, error)
	SetItemQuantity(ctx context.Context, userID uuid.UUID, ref domain.ProductRef, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, ref domain.ProductRef) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
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

// GetCart fetches or creates the user's singleton cart and computes its
// totals from live product prices.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart)
}

// AddItem validates the product and accumulates quantity onto the line.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, ref domain.ProductRef, quantity int) (*CartView, error) {
	if _, err := s.productRepo.FindByRef(ctx, ref); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.cartRepo.AddItem(ctx, cart.ID, ref, quantity); err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart)
}

// SetItemQuantity overwrites a line's quantity; zero removes the line.
func (s *cartService) SetItemQuantity(ctx context.Context, userID uuid.UUID, ref domain.ProductRef, quantity int) (*CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		err = s.cartRepo.RemoveItem(ctx, cart.ID, ref)
	} else {
		err = s.cartRepo.SetItemQuantity(ctx, cart.ID, ref, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart)
}

// RemoveItem deletes one line.
func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, ref domain.ProductRef) (*CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.RemoveItem(ctx, cart.ID, ref); err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.cartRepo.Clear(ctx, cart.ID)
}

func (s *cartService) buildView(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	view := &CartView{ID: cart.ID, Items: []*CartItemView{}}
	for _, item := range items {
		product, err := s.productRepo.FindByRef(ctx, item.Product)
		if err != nil {
			if err == repository.ErrProductNotFound {
				// Dangling reference: the product was removed or disabled
				// after it landed in the cart. Skip it.
				continue
			}
			return nil, fmt.Errorf("failed to resolve cart line %s: %w", item.Product, err)
		}

		unitPrice := product.FinalPrice()
		view.Items = append(view.Items, &CartItemView{
			ID:         item.ID,
			Product:    product,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice * float64(item.Quantity),
		})
		view.TotalPrice += unitPrice * float64(item.Quantity)
		view.TotalItems += item.Quantity
	}
	return view, nil
}
