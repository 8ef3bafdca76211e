package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/repository"

	"github.com/google/uuid"
)

const (
	// DeliveryShippingCost is the flat courier fee. Pickup is free.
	DeliveryShippingCost = 500.0

	orderNumberPrefix = "PK"
)

// FieldErrors collects every violated field of a request so the client
// sees all problems at once instead of the first one.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// ProductNotFoundError names the order line whose product is missing or
// inactive.
type ProductNotFoundError struct {
	ProductID   int64
	ProductType domain.ProductKind
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

// CreateOrderItemInput is one requested order line.
type CreateOrderItemInput struct {
	ProductID   int64  `json:"product_id" validate:"required"`
	ProductType string `json:"product_type" validate:"required,oneof=tire wheel"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderInput is the checkout payload. Guest checkout is the normal
// path, so there is no user field; authenticated checkouts attach the
// user separately.
type CreateOrderInput struct {
	CustomerName  string `json:"customer_name" validate:"required,max=200"`
	CustomerPhone string `json:"customer_phone" validate:"required,max=20"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	NeedsCall     bool   `json:"needs_call"`

	DeliveryMethod  string `json:"delivery_method" validate:"required,oneof=pickup delivery"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=cash card transfer"`
	DeliveryAddress string `json:"delivery_address"`

	Comment string `json:"comment"`

	Items []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`

	UserID *uuid.UUID `json:"-"`
}

// OrderService defines the interface for order business logic
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// Create places an order as one atomic unit: validate, resolve every line
// against the live catalog, price it, then let the repository commit the
// header, the line snapshots and the stock decrements together. Any
// failure leaves no partial order and no partial decrement behind.
func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	fieldErrs := FieldErrors{}
	if input.DeliveryMethod == domain.DeliveryMethodDelivery && strings.TrimSpace(input.DeliveryAddress) == "" {
		fieldErrs["delivery_address"] = "delivery address is required when delivery is selected"
	}
	if len(input.Items) == 0 {
		fieldErrs["items"] = "order must contain at least one item"
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	now := time.Now()
	subtotal := 0.0
	items := make([]*domain.OrderItem, 0, len(input.Items))

	for _, line := range input.Items {
		ref := domain.ProductRef{Kind: domain.ProductKind(line.ProductType), ID: line.ProductID}

		product, err := s.productRepo.FindByRef(ctx, ref)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, &ProductNotFoundError{ProductID: line.ProductID, ProductType: ref.Kind}
			}
			return nil, fmt.Errorf("failed to resolve order line %s: %w", ref, err)
		}

		if line.Quantity > product.StockQuantity {
			return nil, &repository.InsufficientStockError{ProductName: product.DisplayName()}
		}

		unitPrice := product.FinalPrice()
		totalPrice := unitPrice * float64(line.Quantity)
		subtotal += totalPrice

		items = append(items, &domain.OrderItem{
			Product:     ref,
			ProductName: product.DisplayName(),
			ProductSKU:  product.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  totalPrice,
			CreatedAt:   now,
		})
	}

	shippingCost := 0.0
	if input.DeliveryMethod == domain.DeliveryMethodDelivery {
		shippingCost = DeliveryShippingCost
	}

	order := &domain.Order{
		OrderNumber:     generateOrderNumber(now),
		UserID:          input.UserID,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerEmail:   input.CustomerEmail,
		NeedsCall:       input.NeedsCall,
		DeliveryMethod:  input.DeliveryMethod,
		PaymentMethod:   input.PaymentMethod,
		DeliveryAddress: input.DeliveryAddress,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		TaxAmount:       0,
		TotalAmount:     subtotal + shippingCost,
		Notes:           input.Comment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByNumber retrieves an order with its items.
func (s *orderService) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orderRepo.FindByNumber(ctx, orderNumber)
}

// List returns orders newest first.
func (s *orderService) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	return s.orderRepo.List(ctx, page, pageSize)
}

// generateOrderNumber builds the public order number: a fixed prefix, the
// order date and a random suffix, e.g. PK-20250114-3F2A8B1C.
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.Format("20060102"), suffix)
}
