package repository

import (
	"context"
	"testing"

	"github.com/Rustam650/prokolesa/internal/domain"
)

func TestProductFindByRef_InactiveHidden(t *testing.T) {
	ctx := context.Background()
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	repo := NewProductRepository(testDB)

	if _, err := repo.FindByRef(ctx, tire.Ref()); err != nil {
		t.Fatalf("FindByRef() error = %v", err)
	}

	if _, err := testDB.Exec(`UPDATE tire_products SET is_active = false WHERE id = $1`, tire.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := repo.FindByRef(ctx, tire.Ref()); err != ErrProductNotFound {
		t.Errorf("FindByRef() on inactive = %v, want ErrProductNotFound", err)
	}
}

func TestProductFindBySlug_TireBeforeWheel(t *testing.T) {
	ctx := context.Background()
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	wheel := seedProduct(t, domain.ProductKindWheel, 5, 8000)
	repo := NewProductRepository(testDB)

	// Force the same slug into both tables.
	if _, err := testDB.Exec(`UPDATE wheel_products SET slug = $1 WHERE id = $2`, tire.Slug, wheel.ID); err != nil {
		t.Fatalf("rename wheel slug: %v", err)
	}

	found, err := repo.FindBySlug(ctx, tire.Slug)
	if err != nil {
		t.Fatalf("FindBySlug() error = %v", err)
	}
	if found.Kind != domain.ProductKindTire {
		t.Errorf("kind = %s, want tire to shadow wheel", found.Kind)
	}
}

func TestProductFindByAnyID_ChecksBothTables(t *testing.T) {
	ctx := context.Background()
	wheel := seedProduct(t, domain.ProductKindWheel, 5, 8000)
	repo := NewProductRepository(testDB)

	// Make sure no tire shares this id, then resolve without a kind.
	if _, err := testDB.Exec(`UPDATE tire_products SET is_active = false WHERE id = $1`, wheel.ID); err != nil {
		t.Fatalf("hide tire with same id: %v", err)
	}

	found, err := repo.FindByAnyID(ctx, wheel.ID)
	if err != nil {
		t.Fatalf("FindByAnyID() error = %v", err)
	}
	if found.Kind != domain.ProductKindWheel || found.ID != wheel.ID {
		t.Errorf("found %s#%d", found.Kind, found.ID)
	}
}

func TestProductList_FiltersByKindAndStock(t *testing.T) {
	ctx := context.Background()
	inStock := seedProduct(t, domain.ProductKindTire, 5, 3000)
	outOfStock := seedProduct(t, domain.ProductKindTire, 0, 3000)
	repo := NewProductRepository(testDB)

	products, _, err := repo.List(ctx, ProductFilter{
		Kind:     domain.ProductKindTire,
		InStock:  true,
		Page:     1,
		PageSize: 100,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	seen := map[int64]bool{}
	for _, p := range products {
		seen[p.ID] = true
		if p.StockQuantity <= 0 {
			t.Errorf("in_stock filter leaked product %d with stock %d", p.ID, p.StockQuantity)
		}
	}
	if !seen[inStock.ID] {
		t.Errorf("in-stock product %d missing from listing", inStock.ID)
	}
	if seen[outOfStock.ID] {
		t.Errorf("out-of-stock product %d present in listing", outOfStock.ID)
	}
}

func TestProductList_BrandSlugFilter(t *testing.T) {
	ctx := context.Background()
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	other := seedProduct(t, domain.ProductKindTire, 5, 3000)
	repo := NewProductRepository(testDB)

	products, count, err := repo.List(ctx, ProductFilter{
		Kind:       domain.ProductKindTire,
		BrandSlugs: []string{tire.Brand.Slug},
		Page:       1,
		PageSize:   100,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if count != 1 || len(products) != 1 || products[0].ID != tire.ID {
		t.Errorf("brand filter returned %d products (count %d)", len(products), count)
	}
	for _, p := range products {
		if p.ID == other.ID {
			t.Errorf("other brand leaked into listing")
		}
	}
}

func TestProductList_TireSizeFilter(t *testing.T) {
	ctx := context.Background()
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	repo := NewProductRepository(testDB)

	width, profile, diameter := 205, 55, 16
	products, _, err := repo.List(ctx, ProductFilter{
		Kind:         domain.ProductKindTire,
		TireWidth:    &width,
		TireProfile:  &profile,
		TireDiameter: &diameter,
		Page:         1,
		PageSize:     100,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	found := false
	for _, p := range products {
		if p.ID == tire.ID {
			found = true
		}
		if p.Tire == nil || p.Tire.Width != width || p.Tire.Profile != profile || p.Tire.Diameter != diameter {
			t.Errorf("size filter leaked %+v", p.Tire)
		}
	}
	if !found {
		t.Errorf("seeded tire missing from size-filtered listing")
	}
}

func TestProductList_RejectsUnknownOrdering(t *testing.T) {
	ctx := context.Background()
	seedProduct(t, domain.ProductKindTire, 5, 3000)
	repo := NewProductRepository(testDB)

	// An unrecognized ordering silently falls back to the default rather
	// than reaching the SQL string.
	_, _, err := repo.List(ctx, ProductFilter{
		Kind:     domain.ProductKindTire,
		Ordering: "price; DROP TABLE tire_products",
		Page:     1,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("List() with hostile ordering error = %v", err)
	}

	var n int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM tire_products`).Scan(&n); err != nil {
		t.Fatalf("tire_products gone: %v", err)
	}
}

func TestProductCreate_DuplicateSlug(t *testing.T) {
	ctx := context.Background()
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	repo := NewProductRepository(testDB)

	dup := *tire
	dup.ID = 0
	dup.SKU = tire.SKU + "-dup"
	if err := repo.Create(ctx, &dup); err != ErrDuplicateSlugOrSKU {
		t.Errorf("Create() duplicate slug error = %v, want ErrDuplicateSlugOrSKU", err)
	}
}
