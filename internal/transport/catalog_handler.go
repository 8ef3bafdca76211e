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

// CatalogHandler serves the category tree and the brand directory
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers category and brand routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/brands", h.ListBrands)
}

// ListCategories returns active categories. parent=0 selects the roots,
// any other parent value selects that node's children.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var parentID *int64
	rootsOnly := false

	if parent := r.URL.Query().Get("parent"); parent != "" {
		id, err := strconv.ParseInt(parent, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid parent parameter")
			return
		}
		if id == 0 {
			rootsOnly = true
		} else {
			parentID = &id
		}
	}

	categories, err := h.catalogService.ListCategories(r.Context(), parentID, rootsOnly)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(categories),
		"results": categories,
	})
}

// ListBrands returns active brands, optionally narrowed by product type
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.BrandFilter{
		ProductType:  q.Get("product_type"),
		FeaturedOnly: q.Get("featured_only") == "true",
	}

	brands, err := h.catalogService.ListBrands(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list brands", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list brands")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(brands),
		"results": brands,
	})
}
