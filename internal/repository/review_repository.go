package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rustam650/prokolesa/internal/domain"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("user has already reviewed this product")
)

// ReviewRepository stores product reviews and their moderation state.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id int64) (*domain.Review, error)
	ListApprovedForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.Review, error)
	// UpdateStatus moves a pending review to approved or rejected. It only
	// matches pending rows, so a second moderation attempt affects nothing
	// and reports ErrReviewNotFound to the caller.
	UpdateStatus(ctx context.Context, id int64, status, moderatorComment string) error
	AddVote(ctx context.Context, id int64, helpful bool) error
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, product_kind, product_id, user_id, rating, title, text, pros, cons,
	status, moderator_comment, helpful_count, not_helpful_count, created_at, updated_at`

func scanReview(row rowScanner) (*domain.Review, error) {
	rv := &domain.Review{}
	err := row.Scan(
		&rv.ID, &rv.Product.Kind, &rv.Product.ID, &rv.UserID, &rv.Rating,
		&rv.Title, &rv.Text, &rv.Pros, &rv.Cons,
		&rv.Status, &rv.ModeratorComment, &rv.HelpfulCount, &rv.NotHelpfulCount,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// Create inserts a review in pending state. The unique constraint on
// (product_kind, product_id, user_id) blocks duplicates.
func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (product_kind, product_id, user_id, rating, title, text, pros, cons,
			status, moderator_comment, helpful_count, not_helpful_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		rv.Product.Kind, rv.Product.ID, rv.UserID, rv.Rating, rv.Title, rv.Text, rv.Pros, rv.Cons,
		rv.Status, rv.ModeratorComment, rv.HelpfulCount, rv.NotHelpfulCount,
		rv.CreatedAt, rv.UpdatedAt,
	).Scan(&rv.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrReviewAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// FindByID retrieves one review.
func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	review, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}
	return review, nil
}

// ListApprovedForProduct returns published reviews, newest first.
func (r *reviewRepository) ListApprovedForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reviews
		WHERE product_kind = $1 AND product_id = $2 AND status = $3
		ORDER BY created_at DESC`, reviewColumns)

	rows, err := r.db.QueryContext(ctx, query, ref.Kind, ref.ID, domain.ReviewStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for %s: %w", ref, err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// UpdateStatus finalizes moderation of a pending review.
func (r *reviewRepository) UpdateStatus(ctx context.Context, id int64, status, moderatorComment string) error {
	query := `
		UPDATE reviews
		SET status = $2, moderator_comment = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, id, status, moderatorComment, domain.ReviewStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// AddVote bumps one of the helpfulness counters.
func (r *reviewRepository) AddVote(ctx context.Context, id int64, helpful bool) error {
	column := "not_helpful_count"
	if helpful {
		column = "helpful_count"
	}
	query := fmt.Sprintf(`UPDATE reviews SET %s = %s + 1, updated_at = now() WHERE id = $1`, column, column)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to record review vote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
