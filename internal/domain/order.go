package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order status values.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Payment status values. Payment itself is out of scope; the status is a
// plain field updated by back-office staff.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Delivery method values.
const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

// Payment method values.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// Order is an order header. Guest checkout is allowed, so UserID is
// nullable and the customer contact fields are denormalized onto the row.
type Order struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`

	UserID *uuid.UUID `json:"user_id,omitempty"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	NeedsCall     bool   `json:"needs_call"`

	DeliveryMethod  string `json:"delivery_method"`
	PaymentMethod   string `json:"payment_method"`
	DeliveryAddress string `json:"delivery_address,omitempty"`

	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`

	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	TaxAmount    float64 `json:"tax_amount"`
	TotalAmount  float64 `json:"total_amount"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []*OrderItem `json:"items,omitempty"`
}

// OrderItem is one order line. Name, SKU and prices are frozen snapshots
// taken at purchase time; the product ref is kept for traceability only
// and may dangle once the catalog row is gone.
type OrderItem struct {
	ID      int64      `json:"id"`
	OrderID int64      `json:"-"`
	Product ProductRef `json:"-"`

	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`

	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
}
