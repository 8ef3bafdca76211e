package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rustam650/prokolesa/internal/domain"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this slug already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context, parentID *int64, rootsOnly bool) ([]*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, slug, description, image, icon, parent_id,
	is_active, sort_order, meta_title, meta_description, meta_keywords, created_at, updated_at`

func scanCategory(row rowScanner) (*domain.Category, error) {
	c := &domain.Category{}
	var parentID sql.NullInt64
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.Icon, &parentID,
		&c.IsActive, &c.SortOrder, &c.MetaTitle, &c.MetaDescription, &c.MetaKeywords,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	return c, nil
}

// Create inserts a new category and fills in the generated id.
func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (name, slug, description, image, icon, parent_id,
			is_active, sort_order, meta_title, meta_description, meta_keywords, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var parentID sql.NullInt64
	if c.ParentID != nil {
		parentID = sql.NullInt64{Int64: *c.ParentID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Slug, c.Description, c.ImageURL, c.Icon, parentID,
		c.IsActive, c.SortOrder, c.MetaTitle, c.MetaDescription, c.MetaKeywords,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// List returns active categories, optionally restricted to one parent or
// to the tree roots, ordered by sort_order then name.
func (r *categoryRepository) List(ctx context.Context, parentID *int64, rootsOnly bool) ([]*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE is_active = true`, categoryColumns)
	args := []interface{}{}

	switch {
	case parentID != nil:
		query += " AND parent_id = $1"
		args = append(args, *parentID)
	case rootsOnly:
		query += " AND parent_id IS NULL"
	}
	query += " ORDER BY sort_order ASC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// FindByID retrieves one category by id.
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return category, nil
}
