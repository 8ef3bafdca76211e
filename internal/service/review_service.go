package service

import (
	"context"
	"errors"
	"time"

	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrReviewAlreadyModerated rejects a second moderation pass; approved
	// and rejected are both terminal states.
	ErrReviewAlreadyModerated = errors.New("review has already been moderated")

	ErrInvalidModerationStatus = errors.New("moderation status must be approved or rejected")
)

// CreateReviewInput is the payload for posting a review.
type CreateReviewInput struct {
	ProductID   int64  `json:"product_id" validate:"required"`
	ProductType string `json:"product_type" validate:"required,oneof=tire wheel"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Title       string `json:"title" validate:"required,max=200"`
	Text        string `json:"text" validate:"required"`
	Pros        string `json:"pros"`
	Cons        string `json:"cons"`
}

// ReviewService defines the interface for review business logic
type ReviewService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateReviewInput) (*domain.Review, error)
	ListForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.Review, error)
	Moderate(ctx context.Context, reviewID int64, status, moderatorComment string) (*domain.Review, error)
	Vote(ctx context.Context, reviewID int64, helpful bool) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// Create stores a pending review after checking the product exists. One
// review per (user, product); duplicates surface as ErrReviewAlreadyExists.
func (s *reviewService) Create(ctx context.Context, userID uuid.UUID, input CreateReviewInput) (*domain.Review, error) {
	ref := domain.ProductRef{Kind: domain.ProductKind(input.ProductType), ID: input.ProductID}

	if _, err := s.productRepo.FindByRef(ctx, ref); err != nil {
		return nil, err
	}

	now := time.Now()
	review := &domain.Review{
		Product:   ref,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     input.Title,
		Text:      input.Text,
		Pros:      input.Pros,
		Cons:      input.Cons,
		Status:    domain.ReviewStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListForProduct returns published reviews only.
func (s *reviewService) ListForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.Review, error) {
	return s.reviewRepo.ListApprovedForProduct(ctx, ref)
}

// Moderate moves a pending review to approved or rejected.
func (s *reviewService) Moderate(ctx context.Context, reviewID int64, status, moderatorComment string) (*domain.Review, error) {
	if status != domain.ReviewStatusApproved && status != domain.ReviewStatusRejected {
		return nil, ErrInvalidModerationStatus
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != domain.ReviewStatusPending {
		return nil, ErrReviewAlreadyModerated
	}

	if err := s.reviewRepo.UpdateStatus(ctx, reviewID, status, moderatorComment); err != nil {
		// The pending-only guard in the repository lost a race with
		// another moderator.
		if err == repository.ErrReviewNotFound {
			return nil, ErrReviewAlreadyModerated
		}
		return nil, err
	}

	return s.reviewRepo.FindByID(ctx, reviewID)
}

// Vote records a helpfulness vote. No abuse protection by design of the
// counters; they are opaque integers.
func (s *reviewService) Vote(ctx context.Context, reviewID int64, helpful bool) error {
	return s.reviewRepo.AddVote(ctx, reviewID, helpful)
}
