package transport

import (
	"net/http"
	"strconv"

	"github.com/Rustam650/prokolesa/internal/middleware"
	"github.com/Rustam650/prokolesa/internal/repository"
	"github.com/Rustam650/prokolesa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VoteRequest records one helpfulness vote.
type VoteRequest struct {
	Helpful bool `json:"helpful"`
}

// ModerateRequest moves a pending review to a terminal state.
type ModerateRequest struct {
	Status           string `json:"status" validate:"required,oneof=approved rejected"`
	ModeratorComment string `json:"moderator_comment"`
}

// ReviewHandler handles HTTP requests for review operations
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers review routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, adminMiddleware []func(http.Handler) http.Handler) {
	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/product/{kind}/{id}", h.ListForProduct)
		r.Post("/{id}/vote", h.Vote)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware...)
			r.Put("/{id}/moderate", h.Moderate)
		})
	})
}

// Create posts a review, which starts in the pending state
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	var input service.CreateReviewInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.Create(r.Context(), userID, input)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case repository.ErrReviewAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, "you have already reviewed this product")
		default:
			h.logger.Error("Failed to create review", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create review")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

// ListForProduct returns the approved reviews of one product
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	ref, err := parseProductRef(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := h.reviewService.ListForProduct(r.Context(), ref)
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reviews),
		"results": reviews,
	})
}

// Vote records a helpfulness vote on a review
func (h *ReviewHandler) Vote(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	var req VoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reviewService.Vote(r.Context(), reviewID, req.Helpful); err != nil {
		if err == repository.ErrReviewNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("Failed to record review vote", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record vote")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "vote recorded"})
}

// Moderate approves or rejects a pending review
func (h *ReviewHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	var req ModerateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.Moderate(r.Context(), reviewID, req.Status, req.ModeratorComment)
	if err != nil {
		switch err {
		case repository.ErrReviewNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
		case service.ErrReviewAlreadyModerated:
			middleware.RespondWithError(w, http.StatusConflict, "review has already been moderated")
		case service.ErrInvalidModerationStatus:
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to moderate review", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to moderate review")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, review)
}
