package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/Rustam650/prokolesa/internal/domain"

	"go.uber.org/zap"
)

func newTestCatalogService(products *mockProductRepository) CatalogService {
	return NewCatalogService(products, nil, nil, nil, nil, zap.NewNop())
}

func seedCurated(products *mockProductRepository, kind domain.ProductKind, n int, mark func(*domain.Product)) {
	for i := 0; i < n; i++ {
		p := &domain.Product{
			ID:        int64(i + 1),
			Kind:      kind,
			Name:      "P",
			IsActive:  true,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
		mark(p)
		products.add(p)
	}
}

func TestFeaturedProducts_MergesBothKindsCapped(t *testing.T) {
	products := newMockProductRepository()
	seedCurated(products, domain.ProductKindTire, 15, func(p *domain.Product) { p.IsFeatured = true })
	seedCurated(products, domain.ProductKindWheel, 15, func(p *domain.Product) { p.IsFeatured = true })
	svc := newTestCatalogService(products)

	feed, err := svc.FeaturedProducts(context.Background())
	if err != nil {
		t.Fatalf("FeaturedProducts() error = %v", err)
	}

	if len(feed) != 20 {
		t.Errorf("feed size = %d, want 20", len(feed))
	}
	kinds := map[domain.ProductKind]int{}
	for _, p := range feed {
		kinds[p.Kind]++
	}
	if kinds[domain.ProductKindTire] > 10 || kinds[domain.ProductKindWheel] > 10 {
		t.Errorf("per-kind counts = %v, want at most 10 each", kinds)
	}
}

func TestBestsellerProducts_SortedBySales(t *testing.T) {
	products := newMockProductRepository()
	products.add(&domain.Product{ID: 1, Kind: domain.ProductKindTire, IsActive: true, IsBestseller: true, SalesCount: 5})
	products.add(&domain.Product{ID: 2, Kind: domain.ProductKindTire, IsActive: true, IsBestseller: true, SalesCount: 50})
	products.add(&domain.Product{ID: 1, Kind: domain.ProductKindWheel, IsActive: true, IsBestseller: true, SalesCount: 20})
	svc := newTestCatalogService(products)

	feed, err := svc.BestsellerProducts(context.Background())
	if err != nil {
		t.Fatalf("BestsellerProducts() error = %v", err)
	}

	if !sort.SliceIsSorted(feed, func(i, j int) bool { return feed[i].SalesCount > feed[j].SalesCount }) {
		t.Errorf("feed not sorted by sales: %v", salesOf(feed))
	}
	if len(feed) != 3 || feed[0].SalesCount != 50 {
		t.Errorf("feed = %v", salesOf(feed))
	}
}

func TestNewProducts_SortedByCreation(t *testing.T) {
	products := newMockProductRepository()
	old := time.Now().Add(-48 * time.Hour)
	products.add(&domain.Product{ID: 1, Kind: domain.ProductKindTire, IsActive: true, IsNew: true, CreatedAt: old})
	products.add(&domain.Product{ID: 2, Kind: domain.ProductKindWheel, IsActive: true, IsNew: true, CreatedAt: time.Now()})
	svc := newTestCatalogService(products)

	feed, err := svc.NewProducts(context.Background())
	if err != nil {
		t.Fatalf("NewProducts() error = %v", err)
	}
	if len(feed) != 2 || feed[0].Kind != domain.ProductKindWheel {
		t.Errorf("newest first violated: %+v", feed)
	}
}

func TestSmartSearch_DefaultsToTires(t *testing.T) {
	products := newMockProductRepository()
	seedCurated(products, domain.ProductKindTire, 3, func(p *domain.Product) {})
	svc := newTestCatalogService(products)

	results, err := svc.SmartSearch(context.Background(), SmartSearchInput{ProductType: "bogus"})
	if err != nil {
		t.Fatalf("SmartSearch() error = %v", err)
	}
	for _, p := range results {
		if p.Kind != domain.ProductKindTire {
			t.Errorf("result kind = %s, want tire fallback", p.Kind)
		}
	}
}

func salesOf(products []*domain.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.SalesCount
	}
	return out
}
