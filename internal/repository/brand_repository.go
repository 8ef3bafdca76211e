package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rustam650/prokolesa/internal/domain"
)

var (
	ErrBrandNotFound      = errors.New("brand not found")
	ErrBrandAlreadyExists = errors.New("brand with this name already exists")
)

// BrandFilter narrows the brand listing.
type BrandFilter struct {
	// ProductType matches brands making that type, plus "both" makers.
	ProductType  string
	FeaturedOnly bool
}

// BrandRepository defines the interface for brand data access
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	List(ctx context.Context, filter BrandFilter) ([]*domain.Brand, error)
	FindByID(ctx context.Context, id int64) (*domain.Brand, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Brand, error)
}

type brandRepository struct {
	db *sql.DB
}

// NewBrandRepository creates a new instance of BrandRepository
func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

const brandColumns = `id, name, slug, description, logo, website, product_types,
	rating, popularity_score, country, is_active, is_featured, created_at, updated_at`

func scanBrand(row rowScanner) (*domain.Brand, error) {
	b := &domain.Brand{}
	err := row.Scan(
		&b.ID, &b.Name, &b.Slug, &b.Description, &b.LogoURL, &b.Website, &b.ProductTypes,
		&b.Rating, &b.PopularityScore, &b.Country, &b.IsActive, &b.IsFeatured,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create inserts a new brand and fills in the generated id.
func (r *brandRepository) Create(ctx context.Context, b *domain.Brand) error {
	query := `
		INSERT INTO brands (name, slug, description, logo, website, product_types,
			rating, popularity_score, country, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		b.Name, b.Slug, b.Description, b.LogoURL, b.Website, b.ProductTypes,
		b.Rating, b.PopularityScore, b.Country, b.IsActive, b.IsFeatured,
		b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrBrandAlreadyExists
		}
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

// List returns active brands ordered by popularity then name.
func (r *brandRepository) List(ctx context.Context, f BrandFilter) ([]*domain.Brand, error) {
	query := fmt.Sprintf(`SELECT %s FROM brands WHERE is_active = true`, brandColumns)
	args := []interface{}{}

	if f.ProductType == domain.BrandTypeTire || f.ProductType == domain.BrandTypeWheel {
		args = append(args, f.ProductType)
		query += fmt.Sprintf(" AND (product_types = $%d OR product_types = 'both')", len(args))
	}
	if f.FeaturedOnly {
		query += " AND is_featured = true"
	}
	query += " ORDER BY popularity_score DESC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}
	return brands, nil
}

// FindByID retrieves one brand by id.
func (r *brandRepository) FindByID(ctx context.Context, id int64) (*domain.Brand, error) {
	query := fmt.Sprintf(`SELECT %s FROM brands WHERE id = $1`, brandColumns)

	brand, err := scanBrand(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand by ID: %w", err)
	}
	return brand, nil
}

// FindBySlug retrieves one brand by slug.
func (r *brandRepository) FindBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	query := fmt.Sprintf(`SELECT %s FROM brands WHERE slug = $1`, brandColumns)

	brand, err := scanBrand(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand by slug: %w", err)
	}
	return brand, nil
}
