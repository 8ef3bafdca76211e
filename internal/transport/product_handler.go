package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/middleware"
	"github.com/Rustam650/prokolesa/internal/repository"
	"github.com/Rustam650/prokolesa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxPageSize = 100

var (
	errInvalidProductType = errors.New("invalid product type")
	errInvalidProductID   = errors.New("invalid product id")
	errInvalidQueryNumber = errors.New("invalid numeric query parameter")
)

// ProductListResponse is one page of the catalog.
type ProductListResponse struct {
	Count    int               `json:"count"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Results  []*domain.Product `json:"results"`
}

// EULabel is the tire energy label, rendered only when every field is set.
type EULabel struct {
	FuelEfficiency string `json:"fuel_efficiency"`
	WetGrip        string `json:"wet_grip"`
	NoiseLevel     int    `json:"noise_level"`
}

// ProductDetailResponse decorates a product with its gallery.
type ProductDetailResponse struct {
	*domain.Product
	Images      []*domain.ProductImage `json:"images"`
	MainImage   *domain.ProductImage   `json:"main_image"`
	StockStatus string                 `json:"stock_status"`
	FinalPrice  float64                `json:"final_price"`
	EULabel     *EULabel               `json:"eu_label,omitempty"`
}

// SmartSearchResponse wraps the parameter-search results.
type SmartSearchResponse struct {
	Count   int               `json:"count"`
	Message string            `json:"message"`
	Results []*domain.Product `json:"results"`
}

// ProductHandler handles HTTP requests for catalog reads
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminMiddleware []func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/featured", h.Featured)
		r.Get("/bestsellers", h.Bestsellers)
		r.Get("/new", h.New)
		r.Get("/by-id/{id}", h.GetByID)
		r.Get("/{slug}", h.GetBySlug)
	})

	// Gallery management is back-office only.
	r.Route("/api/admin/products/{kind}/{id}/images", func(r chi.Router) {
		r.Use(adminMiddleware...)
		r.Put("/{imageID}/main", h.SetMainImage)
	})

	r.Post("/api/search/smart", h.SmartSearch)
}

// List handles the filtered, paginated catalog listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, count, err := h.catalogService.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Count:    count,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  products,
	})
}

// Featured handles the curated featured feed
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.respondFeed(w, r, h.catalogService.FeaturedProducts, "failed to load featured products")
}

// Bestsellers handles the curated bestseller feed
func (h *ProductHandler) Bestsellers(w http.ResponseWriter, r *http.Request) {
	h.respondFeed(w, r, h.catalogService.BestsellerProducts, "failed to load bestsellers")
}

// New handles the curated new-arrivals feed
func (h *ProductHandler) New(w http.ResponseWriter, r *http.Request) {
	h.respondFeed(w, r, h.catalogService.NewProducts, "failed to load new products")
}

func (h *ProductHandler) respondFeed(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context) ([]*domain.Product, error),
	failMessage string,
) {
	products, err := fetch(r.Context())
	if err != nil {
		h.logger.Error(failMessage, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, failMessage)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(products),
		"results": products,
	})
}

// GetByID resolves a product by its numeric id. An explicit product_type
// checks one table; without it tires are checked before wheels.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	kind := domain.ProductKind(r.URL.Query().Get("product_type"))

	product, err := h.catalogService.GetProductByID(r.Context(), id, kind)
	if err != nil {
		h.respondProductError(w, err, "failed to load product")
		return
	}

	h.respondDetail(w, r, product)
}

// GetBySlug resolves a product by slug, tires before wheels.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalogService.GetProductBySlug(r.Context(), slug)
	if err != nil {
		h.respondProductError(w, err, "failed to load product")
		return
	}

	h.respondDetail(w, r, product)
}

func (h *ProductHandler) respondDetail(w http.ResponseWriter, r *http.Request, product *domain.Product) {
	images, err := h.catalogService.ImagesForProduct(r.Context(), product.Ref())
	if err != nil {
		h.logger.Error("Failed to load product images",
			zap.String("product", product.Ref().String()),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	resp := ProductDetailResponse{
		Product:     product,
		Images:      images,
		MainImage:   domain.MainImage(images),
		StockStatus: product.StockStatus(),
		FinalPrice:  product.FinalPrice(),
	}
	if t := product.Tire; t != nil && t.FuelEfficiency != "" && t.WetGrip != "" && t.NoiseLevel != nil {
		resp.EULabel = &EULabel{
			FuelEfficiency: t.FuelEfficiency,
			WetGrip:        t.WetGrip,
			NoiseLevel:     *t.NoiseLevel,
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// SmartSearch handles the parameter-driven search endpoint
func (h *ProductHandler) SmartSearch(w http.ResponseWriter, r *http.Request) {
	var input service.SmartSearchInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	products, err := h.catalogService.SmartSearch(r.Context(), input)
	if err != nil {
		h.logger.Error("Smart search failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "search failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SmartSearchResponse{
		Count:   len(products),
		Message: "Подобрано товаров: " + strconv.Itoa(len(products)),
		Results: products,
	})
}

// SetMainImage flips the main flag on one gallery image
func (h *ProductHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
	ref, err := parseProductRef(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	imageID, err := strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := h.catalogService.SetMainImage(r.Context(), ref, imageID); err != nil {
		if err == repository.ErrImageNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "image not found")
			return
		}
		h.logger.Error("Failed to set main image", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to set main image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "main image updated"})
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error, failMessage string) {
	if err == repository.ErrProductNotFound {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	h.logger.Error(failMessage, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, failMessage)
}

func parseProductRef(r *http.Request) (domain.ProductRef, error) {
	kind := domain.ProductKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		return domain.ProductRef{}, errInvalidProductType
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return domain.ProductRef{}, errInvalidProductID
	}
	return domain.ProductRef{Kind: kind, ID: id}, nil
}

func parseProductFilter(r *http.Request) (repository.ProductFilter, error) {
	q := r.URL.Query()

	kind := domain.ProductKind(q.Get("product_type"))
	if !kind.Valid() {
		kind = domain.ProductKindTire
	}

	filter := repository.ProductFilter{
		Kind:     kind,
		Search:   strings.TrimSpace(q.Get("search")),
		InStock:  q.Get("in_stock") == "true",
		Season:   q.Get("season"),
		Ordering: q.Get("ordering"),
		Page:     parsePositiveInt(q.Get("page"), 1),
		PageSize: parsePositiveInt(q.Get("page_size"), 20),
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	if brands := strings.TrimSpace(q.Get("brand")); brands != "" {
		for _, slug := range strings.Split(brands, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				filter.BrandSlugs = append(filter.BrandSlugs, slug)
			}
		}
	}

	var err error
	if filter.MinPrice, err = parseOptionalFloat(q.Get("min_price")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.MaxPrice, err = parseOptionalFloat(q.Get("max_price")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.TireWidth, err = parseOptionalInt(q.Get("tire_width")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.TireProfile, err = parseOptionalInt(q.Get("tire_profile")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.TireDiameter, err = parseOptionalInt(q.Get("tire_diameter")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.WheelWidth, err = parseOptionalFloat(q.Get("wheel_width")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.WheelDiameter, err = parseOptionalFloat(q.Get("wheel_diameter")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.OffsetFrom, err = parseOptionalInt(q.Get("et_from")); err != nil {
		return filter, errInvalidQueryNumber
	}
	if filter.OffsetTo, err = parseOptionalInt(q.Get("et_to")); err != nil {
		return filter, errInvalidQueryNumber
	}
	filter.BoltPattern = q.Get("pcd")
	filter.WheelType = q.Get("wheel_type")

	return filter, nil
}

func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
