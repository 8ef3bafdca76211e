package service

import (
	"context"
	"math/rand"
	"sort"

	"github.com/Rustam650/prokolesa/internal/cache"
	"github.com/Rustam650/prokolesa/internal/domain"
	"github.com/Rustam650/prokolesa/internal/repository"

	"go.uber.org/zap"
)

const (
	// curatedPerKind limits how many tires and wheels each feed pulls
	// before merging; curatedLimit caps the merged feed.
	curatedPerKind = 10
	curatedLimit   = 20

	smartSearchLimit = 50

	cacheKeyFeatured    = "catalog:featured"
	cacheKeyBestsellers = "catalog:bestsellers"
	cacheKeyNew         = "catalog:new"
)

// SmartSearchInput is the body of the parameter-driven search endpoint.
type SmartSearchInput struct {
	SearchType  string `json:"search_type"`
	ProductType string `json:"product_type"`
	Width       *int   `json:"width"`
	Profile     *int   `json:"profile"`
	Diameter    *int   `json:"diameter"`
	Season      string `json:"season"`
}

// CatalogService serves every catalog read: filtered lists, detail
// lookups, the merged tire+wheel feeds, categories and brands.
type CatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64, kind domain.ProductKind) (*domain.Product, error)
	FeaturedProducts(ctx context.Context) ([]*domain.Product, error)
	BestsellerProducts(ctx context.Context) ([]*domain.Product, error)
	NewProducts(ctx context.Context) ([]*domain.Product, error)
	SmartSearch(ctx context.Context, input SmartSearchInput) ([]*domain.Product, error)
	ImagesForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.ProductImage, error)
	SetMainImage(ctx context.Context, ref domain.ProductRef, imageID int64) error
	ListCategories(ctx context.Context, parentID *int64, rootsOnly bool) ([]*domain.Category, error)
	ListBrands(ctx context.Context, filter repository.BrandFilter) ([]*domain.Brand, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
	imageRepo    repository.ImageRepository
	cache        *cache.Cache
	logger       *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService. The cache
// may be nil; every read then goes straight to Postgres.
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	brandRepo repository.BrandRepository,
	imageRepo repository.ImageRepository,
	catalogCache *cache.Cache,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		imageRepo:    imageRepo,
		cache:        catalogCache,
		logger:       logger,
	}
}

// ListProducts returns one filtered page of a single kind.
func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, filter)
}

// GetProductBySlug resolves a slug, tires before wheels.
func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.productRepo.FindBySlug(ctx, slug)
}

// GetProductByID resolves a numeric id. An invalid kind falls back to
// checking both tables, tires first.
func (s *catalogService) GetProductByID(ctx context.Context, id int64, kind domain.ProductKind) (*domain.Product, error) {
	if kind.Valid() {
		return s.productRepo.FindByRef(ctx, domain.ProductRef{Kind: kind, ID: id})
	}
	return s.productRepo.FindByAnyID(ctx, id)
}

// mergedFeed loads up to curatedPerKind products of each kind via fetch,
// consulting the cache first. The caller orders the merged slice.
func (s *catalogService) mergedFeed(
	ctx context.Context,
	key string,
	fetch func(context.Context, domain.ProductKind, int) ([]*domain.Product, error),
) ([]*domain.Product, error) {
	if s.cache != nil {
		var cached []*domain.Product
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		} else if err != cache.ErrCacheMiss {
			s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	tires, err := fetch(ctx, domain.ProductKindTire, curatedPerKind)
	if err != nil {
		return nil, err
	}
	wheels, err := fetch(ctx, domain.ProductKindWheel, curatedPerKind)
	if err != nil {
		return nil, err
	}
	merged := append(tires, wheels...)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, merged); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return merged, nil
}

// FeaturedProducts merges featured tires and wheels and shuffles the feed.
func (s *catalogService) FeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	merged, err := s.mergedFeed(ctx, cacheKeyFeatured, s.productRepo.FindFeatured)
	if err != nil {
		return nil, err
	}
	rand.Shuffle(len(merged), func(i, j int) {
		merged[i], merged[j] = merged[j], merged[i]
	})
	return truncate(merged, curatedLimit), nil
}

// BestsellerProducts merges both kinds and re-sorts by sales count, since
// the per-table ordering does not survive the merge.
func (s *catalogService) BestsellerProducts(ctx context.Context) ([]*domain.Product, error) {
	merged, err := s.mergedFeed(ctx, cacheKeyBestsellers, s.productRepo.FindBestsellers)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SalesCount > merged[j].SalesCount
	})
	return truncate(merged, curatedLimit), nil
}

// NewProducts merges both kinds and re-sorts by creation time.
func (s *catalogService) NewProducts(ctx context.Context) ([]*domain.Product, error) {
	merged, err := s.mergedFeed(ctx, cacheKeyNew, s.productRepo.FindNewest)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return truncate(merged, curatedLimit), nil
}

// SmartSearch runs the parameter search against one kind, capped at 50.
func (s *catalogService) SmartSearch(ctx context.Context, input SmartSearchInput) ([]*domain.Product, error) {
	kind := domain.ProductKind(input.ProductType)
	if !kind.Valid() {
		kind = domain.ProductKindTire
	}

	filter := repository.ProductFilter{
		Kind:     kind,
		Page:     1,
		PageSize: smartSearchLimit,
	}
	if kind == domain.ProductKindTire {
		filter.TireWidth = input.Width
		filter.TireProfile = input.Profile
		filter.TireDiameter = input.Diameter
		filter.Season = input.Season
	}

	products, _, err := s.productRepo.List(ctx, filter)
	return products, err
}

// ImagesForProduct returns the product's images with real images ahead of
// SVG placeholders.
func (s *catalogService) ImagesForProduct(ctx context.Context, ref domain.ProductRef) ([]*domain.ProductImage, error) {
	images, err := s.imageRepo.ListForProduct(ctx, ref)
	if err != nil {
		return nil, err
	}
	return domain.SortImages(images), nil
}

// SetMainImage flips the main flag for a product's gallery.
func (s *catalogService) SetMainImage(ctx context.Context, ref domain.ProductRef, imageID int64) error {
	return s.imageRepo.SetMain(ctx, ref, imageID)
}

// ListCategories returns active categories for a tree level.
func (s *catalogService) ListCategories(ctx context.Context, parentID *int64, rootsOnly bool) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx, parentID, rootsOnly)
}

// ListBrands returns active brands.
func (s *catalogService) ListBrands(ctx context.Context, filter repository.BrandFilter) ([]*domain.Brand, error) {
	return s.brandRepo.List(ctx, filter)
}

func truncate(products []*domain.Product, limit int) []*domain.Product {
	if len(products) > limit {
		return products[:limit]
	}
	return products
}
