package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the singleton per-user cart.
type Cart struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem is one cart line. A (cart, product ref) pair is unique;
// re-adding the same product accumulates quantity instead of inserting a
// second row.
type CartItem struct {
	ID      int64      `json:"id"`
	CartID  int64      `json:"-"`
	Product ProductRef `json:"-"`

	Quantity int `json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
