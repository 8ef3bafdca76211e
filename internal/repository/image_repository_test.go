package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Rustam650/prokolesa/internal/domain"
)

func seedImage(t *testing.T, ref domain.ProductRef, url string, isMain bool) *domain.ProductImage {
	t.Helper()
	img := &domain.ProductImage{
		Product:   ref,
		URL:       url,
		IsMain:    isMain,
		CreatedAt: time.Now(),
	}
	if err := NewImageRepository(testDB).Create(context.Background(), img); err != nil {
		t.Fatalf("seed image: %v", err)
	}
	return img
}

func mainCount(t *testing.T, ref domain.ProductRef) int {
	t.Helper()
	var n int
	err := testDB.QueryRow(
		`SELECT COUNT(*) FROM product_images WHERE product_kind = $1 AND product_id = $2 AND is_main`,
		ref.Kind, ref.ID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("count main images: %v", err)
	}
	return n
}

func TestImageSetMain_MovesTheFlag(t *testing.T) {
	ctx := context.Background()
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	ref := tire.Ref()

	first := seedImage(t, ref, "/media/one.jpg", true)
	second := seedImage(t, ref, "/media/two.jpg", false)
	repo := NewImageRepository(testDB)

	if err := repo.SetMain(ctx, ref, second.ID); err != nil {
		t.Fatalf("SetMain() error = %v", err)
	}

	if got := mainCount(t, ref); got != 1 {
		t.Fatalf("main images = %d, want exactly 1", got)
	}

	images, err := repo.ListForProduct(ctx, ref)
	if err != nil {
		t.Fatalf("ListForProduct() error = %v", err)
	}
	for _, img := range images {
		if img.ID == second.ID && !img.IsMain {
			t.Error("new main image not flagged")
		}
		if img.ID == first.ID && img.IsMain {
			t.Error("old main image still flagged")
		}
	}
}

func TestImageSetMain_UnknownImage(t *testing.T) {
	ctx := context.Background()
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	ref := tire.Ref()
	seedImage(t, ref, "/media/one.jpg", true)
	repo := NewImageRepository(testDB)

	if err := repo.SetMain(ctx, ref, 999999); err != ErrImageNotFound {
		t.Errorf("SetMain() error = %v, want ErrImageNotFound", err)
	}
	// The previous main flag survives the failed move.
	if got := mainCount(t, ref); got != 1 {
		t.Errorf("main images after failed SetMain = %d, want 1", got)
	}
}

func TestImageCreate_MainDemotesPrevious(t *testing.T) {
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	ref := tire.Ref()

	seedImage(t, ref, "/media/one.jpg", true)
	seedImage(t, ref, "/media/two.jpg", true)

	if got := mainCount(t, ref); got != 1 {
		t.Errorf("main images = %d, want 1 after second main insert", got)
	}
}

func TestImageDelete(t *testing.T) {
	tire := seedProduct(t, domain.ProductKindTire, 5, 3000)
	ref := tire.Ref()
	img := seedImage(t, ref, "/media/one.jpg", false)
	repo := NewImageRepository(testDB)

	if err := repo.Delete(context.Background(), img.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(context.Background(), img.ID); err != ErrImageNotFound {
		t.Errorf("second Delete() error = %v, want ErrImageNotFound", err)
	}
}
