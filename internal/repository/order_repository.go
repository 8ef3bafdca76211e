package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rustam650/prokolesa/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository persists orders. Create is the transactional core of the
// whole service: header, lines and stock decrements commit or roll back as
// one unit.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error
	FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, customer_name, customer_phone, customer_email,
	needs_call, delivery_method, payment_method, delivery_address, status, payment_status,
	subtotal, shipping_cost, tax_amount, total_amount, notes, created_at, updated_at`

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.NeedsCall, &o.DeliveryMethod, &o.PaymentMethod, &o.DeliveryAddress,
		&o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.ShippingCost, &o.TaxAmount, &o.TotalAmount, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create writes the order header, its item snapshots and the stock
// decrements in one transaction. The decrement is conditional
// (stock_quantity >= quantity), so a concurrent order on the last units
// makes this one fail with InsufficientStockError and roll back cleanly
// rather than oversell.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_number, user_id, customer_name, customer_phone, customer_email,
			needs_call, delivery_method, payment_method, delivery_address, status, payment_status,
			subtotal, shipping_cost, tax_amount, total_amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`,
		order.OrderNumber, order.UserID, order.CustomerName, order.CustomerPhone, order.CustomerEmail,
		order.NeedsCall, order.DeliveryMethod, order.PaymentMethod, order.DeliveryAddress,
		order.Status, order.PaymentStatus,
		order.Subtotal, order.ShippingCost, order.TaxAmount, order.TotalAmount, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		item.OrderID = order.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_kind, product_id, product_name, product_sku,
				quantity, unit_price, total_price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			item.OrderID, item.Product.Kind, item.Product.ID, item.ProductName, item.ProductSKU,
			item.Quantity, item.UnitPrice, item.TotalPrice, item.CreatedAt,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}

		decrement := fmt.Sprintf(`
			UPDATE %s
			SET stock_quantity = stock_quantity - $1,
			    sales_count = sales_count + $1,
			    updated_at = now()
			WHERE id = $2 AND stock_quantity >= $1`,
			tableFor(item.Product.Kind))

		result, err := tx.ExecContext(ctx, decrement, item.Quantity, item.Product.ID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock for %s: %w", item.Product, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return &InsufficientStockError{ProductName: item.ProductName}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	order.Items = items
	return nil
}

// FindByNumber loads an order and its items by the public order number.
func (r *orderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_number = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by number: %w", err)
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// List returns orders newest first, with items attached.
func (r *orderRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, orderColumns)

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := r.listItems(ctx, order.ID)
		if err != nil {
			return nil, 0, err
		}
		order.Items = items
	}
	return orders, total, nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_kind, product_id, product_name, product_sku,
			quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.Product.Kind, &item.Product.ID,
			&item.ProductName, &item.ProductSKU,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}
