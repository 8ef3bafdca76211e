package transport

import (
	"net/http"

	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/middleware"
	"github.com/Rustam650/prokolesa/internal/repository"
	"github.com/Rustam650/prokolesa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartItemRequest addresses one cart line.
type CartItemRequest struct {
	ProductID   int64  `json:"product_id" validate:"required"`
	ProductType string `json:"product_type" validate:"required,oneof=tire wheel"`
	Quantity    int    `json:"quantity"`
}

// CartHandler handles HTTP requests for the authenticated user's cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers cart routes, all behind authentication
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items", h.SetItemQuantity)
		r.Delete("/items", h.RemoveItem)
	})
}

// GetCart returns the user's cart with live prices
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem adds quantity of a product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}
	if req.Quantity < 1 {
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), userID, req.ref(), req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to add cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// SetItemQuantity overwrites a line's quantity; zero removes it
func (h *CartHandler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}
	if req.Quantity < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	cart, err := h.cartService.SetItemQuantity(r.Context(), userID, req.ref(), req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to update cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// RemoveItem deletes one cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), userID, req.ref())
	if err != nil {
		h.respondCartError(w, err, "failed to remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

func (h *CartHandler) decodeItemRequest(w http.ResponseWriter, r *http.Request) (*CartItemRequest, bool) {
	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return &req, true
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, failMessage string) {
	switch err {
	case repository.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case repository.ErrCartItemNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
	default:
		h.logger.Error(failMessage, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, failMessage)
	}
}

func (r *CartItemRequest) ref() domain.ProductRef {
	return domain.ProductRef{Kind: domain.ProductKind(r.ProductType), ID: r.ProductID}
}

// currentUserID pulls the authenticated user out of the request context.
// The auth middleware guarantees it is present on protected routes.
func currentUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.Error("Invalid user ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}
