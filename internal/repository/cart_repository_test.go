package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Rustam650/prokolesa/internal/domain"

	"github.com/google/uuid"
)

func seedUser(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testDB.Exec(
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES ($1, $2, '', $3, $3)`,
		id, id.String()+"@example.com", time.Now(),
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func TestCartGetOrCreate_Singleton(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)
	repo := NewCartRepository(testDB)

	first, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate() again error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("cart ids differ: %d vs %d", first.ID, second.ID)
	}
}

func TestCartAddItem_AccumulatesOnConflict(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)
	tire := seedProduct(t, domain.ProductKindTire, 10, 3000)
	repo := NewCartRepository(testDB)

	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if _, err := repo.AddItem(ctx, cart.ID, tire.Ref(), 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := repo.AddItem(ctx, cart.ID, tire.Ref(), 2); err != nil {
		t.Fatalf("AddItem() again error = %v", err)
	}

	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want one accumulated row", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", items[0].Quantity)
	}
}

func TestCartRemoveItem_Unknown(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)
	repo := NewCartRepository(testDB)

	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	ref := domain.ProductRef{Kind: domain.ProductKindWheel, ID: 424242}
	if err := repo.RemoveItem(ctx, cart.ID, ref); err != ErrCartItemNotFound {
		t.Errorf("RemoveItem() error = %v, want ErrCartItemNotFound", err)
	}
}

func TestCartClear(t *testing.T) {
	ctx := context.Background()
	userID := seedUser(t)
	tire := seedProduct(t, domain.ProductKindTire, 10, 3000)
	wheel := seedProduct(t, domain.ProductKindWheel, 10, 8000)
	repo := NewCartRepository(testDB)

	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if _, err := repo.AddItem(ctx, cart.ID, tire.Ref(), 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := repo.AddItem(ctx, cart.ID, wheel.Ref(), 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	if err := repo.Clear(ctx, cart.ID); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items after clear = %d, want 0", len(items))
	}
}
