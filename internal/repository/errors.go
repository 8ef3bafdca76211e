package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateSlugOrSKU signals a unique-constraint hit on a catalog
	// natural key (slug or SKU).
	ErrDuplicateSlugOrSKU = errors.New("product with this slug or sku already exists")
)

// InsufficientStockError reports an order line that asked for more units
// than the shelf holds. It names the product so the API can tell the
// customer which line failed.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q", e.ProductName)
}

// isUniqueViolation reports whether err is a Postgres 23505 error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
