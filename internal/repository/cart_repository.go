package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rustam650/prokolesa/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository manages the singleton per-user cart and its lines.
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]*domain.CartItem, error)
	// AddItem upserts a line; an existing (cart, product) line accumulates
	// quantity instead of duplicating.
	AddItem(ctx context.Context, cartID int64, ref domain.ProductRef, quantity int) (*domain.CartItem, error)
	SetItemQuantity(ctx context.Context, cartID int64, ref domain.ProductRef, quantity int) error
	RemoveItem(ctx context.Context, cartID int64, ref domain.ProductRef) error
	Clear(ctx context.Context, cartID int64) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetOrCreate fetches the user's cart, creating it on first use. The
// unique index on user_id makes the insert race-safe.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	query := `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, user_id, created_at, updated_at
	`

	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return cart, nil
}

// ListItems returns the cart lines, oldest first.
func (r *cartRepository) ListItems(ctx context.Context, cartID int64) ([]*domain.CartItem, error) {
	query := `
		SELECT id, cart_id, product_kind, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item := &domain.CartItem{}
		err := rows.Scan(
			&item.ID, &item.CartID, &item.Product.Kind, &item.Product.ID,
			&item.Quantity, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return items, nil
}

// AddItem accumulates quantity onto an existing line or inserts a new one.
func (r *cartRepository) AddItem(ctx context.Context, cartID int64, ref domain.ProductRef, quantity int) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (cart_id, product_kind, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (cart_id, product_kind, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, cart_id, product_kind, product_id, quantity, created_at, updated_at
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, cartID, ref.Kind, ref.ID, quantity).Scan(
		&item.ID, &item.CartID, &item.Product.Kind, &item.Product.ID,
		&item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return item, nil
}

// SetItemQuantity overwrites a line's quantity.
func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID int64, ref domain.ProductRef, quantity int) error {
	query := `
		UPDATE cart_items SET quantity = $4, updated_at = now()
		WHERE cart_id = $1 AND product_kind = $2 AND product_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, cartID, ref.Kind, ref.ID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// RemoveItem deletes one line.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID int64, ref domain.ProductRef) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_kind = $2 AND product_id = $3`

	result, err := r.db.ExecContext(ctx, query, cartID, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear deletes every line in the cart.
func (r *cartRepository) Clear(ctx context.Context, cartID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
