package transport

import (
	"errors"
	"net/http"

	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/middleware"
	"github.com/Rustam650/prokolesa/internal/repository"
	"github.com/Rustam650/prokolesa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderListResponse is one page of orders.
type OrderListResponse struct {
	Count    int             `json:"count"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Results  []*domain.Order `json:"results"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers order routes. Checkout is public so guests can
// order; optional auth attaches the user when a token is sent anyway.
// Listing stays behind admin.
func (h *OrderHandler) RegisterRoutes(r chi.Router, optionalAuth func(http.Handler) http.Handler, adminMiddleware []func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.With(optionalAuth).Post("/create", h.Create)
		r.Get("/{orderNumber}", h.GetByNumber)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware...)
			r.Get("/", h.List)
		})
	})
}

// Create handles checkout
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateOrderInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Attach the user when the request carries a valid token; checkout
	// itself never requires one.
	if userIDStr, ok := middleware.GetUserID(r.Context()); ok {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			input.UserID = &userID
		}
	}

	order, err := h.orderService.Create(r.Context(), input)
	if err != nil {
		h.respondCreateError(w, err)
		return
	}

	h.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.TotalAmount),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) respondCreateError(w http.ResponseWriter, err error) {
	var fieldErrs service.FieldErrors
	if errors.As(err, &fieldErrs) {
		middleware.RespondWithFieldErrors(w, fieldErrs)
		return
	}

	var notFound *service.ProductNotFoundError
	if errors.As(err, &notFound) {
		middleware.RespondWithError(w, http.StatusBadRequest, notFound.Error())
		return
	}

	var stock *repository.InsufficientStockError
	if errors.As(err, &stock) {
		middleware.RespondWithError(w, http.StatusBadRequest, stock.Error())
		return
	}

	h.logger.Error("Order creation failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create order")
}

// GetByNumber returns one order with its items
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	order, err := h.orderService.GetByNumber(r.Context(), orderNumber)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to load order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// List returns orders newest first
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parsePositiveInt(q.Get("page"), 1)
	pageSize := parsePositiveInt(q.Get("page_size"), 20)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	orders, count, err := h.orderService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  orders,
	})
}
