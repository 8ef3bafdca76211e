package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rustam650/prokolesa/internal/domain"
)

var (
	ErrImageNotFound = errors.New("product image not found")
)

// ImageRepository stores product images keyed by the tagged product ref.
type ImageRepository interface {
	Create(ctx context.Context, image *domain.ProductImage) error
	ListForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.ProductImage, error)
	// SetMain atomically clears the previous main flag for the product and
	// sets it on imageID. A partial unique index backs the invariant, so
	// two concurrent writers cannot both end up flagged.
	SetMain(ctx context.Context, ref domain.ProductRef, imageID int64) error
	Delete(ctx context.Context, imageID int64) error
}

type imageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *sql.DB) ImageRepository {
	return &imageRepository{db: db}
}

const imageColumns = `id, product_kind, product_id, image, alt_text, title, is_main, sort_order, created_at`

func scanImage(row rowScanner) (*domain.ProductImage, error) {
	img := &domain.ProductImage{}
	err := row.Scan(
		&img.ID, &img.Product.Kind, &img.Product.ID, &img.URL, &img.AltText, &img.Title,
		&img.IsMain, &img.SortOrder, &img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Create inserts an image row. When is_main is requested the previous main
// image is demoted inside the same transaction.
func (r *imageRepository) Create(ctx context.Context, img *domain.ProductImage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if img.IsMain {
		_, err = tx.ExecContext(ctx,
			`UPDATE product_images SET is_main = false
			 WHERE product_kind = $1 AND product_id = $2 AND is_main = true`,
			img.Product.Kind, img.Product.ID)
		if err != nil {
			return fmt.Errorf("failed to demote previous main image: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO product_images (product_kind, product_id, image, alt_text, title, is_main, sort_order, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		img.Product.Kind, img.Product.ID, img.URL, img.AltText, img.Title,
		img.IsMain, img.SortOrder, img.CreatedAt,
	).Scan(&img.ID)
	if err != nil {
		return fmt.Errorf("failed to create product image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit image: %w", err)
	}
	return nil
}

// ListForProduct returns the images of one product in (sort_order,
// created_at) order. A dangling ref simply yields an empty slice.
func (r *imageRepository) ListForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.ProductImage, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM product_images
		WHERE product_kind = $1 AND product_id = $2
		ORDER BY sort_order ASC, created_at ASC`, imageColumns)

	rows, err := r.db.QueryContext(ctx, query, ref.Kind, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images for %s: %w", ref, err)
	}
	defer rows.Close()

	images := []*domain.ProductImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}
	return images, nil
}

// SetMain flips the main flag to imageID in one transaction.
func (r *imageRepository) SetMain(ctx context.Context, ref domain.ProductRef, imageID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE product_images SET is_main = false
		 WHERE product_kind = $1 AND product_id = $2 AND is_main = true`,
		ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to demote previous main image: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE product_images SET is_main = true
		 WHERE id = $1 AND product_kind = $2 AND product_id = $3`,
		imageID, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to set main image: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrImageNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit main image change: %w", err)
	}
	return nil
}

// Delete removes an image row.
func (r *imageRepository) Delete(ctx context.Context, imageID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("failed to delete product image: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrImageNotFound
	}
	return nil
}
