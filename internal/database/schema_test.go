package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func TestMigrationFilesExist(t *testing.T) {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_users.sql",
		"00002_create_refresh_tokens.sql",
		"00003_create_categories.sql",
		"00004_create_brands.sql",
		"00005_create_tire_products.sql",
		"00006_create_wheel_products.sql",
		"00007_create_product_images.sql",
		"00008_create_carts.sql",
		"00009_create_cart_items.sql",
		"00010_create_orders.sql",
		"00011_create_order_items.sql",
		"00012_create_reviews.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"users":          "00001_create_users.sql",
		"refresh_tokens": "00002_create_refresh_tokens.sql",
		"categories":     "00003_create_categories.sql",
		"brands":         "00004_create_brands.sql",
		"tire_products":  "00005_create_tire_products.sql",
		"wheel_products": "00006_create_wheel_products.sql",
		"product_images": "00007_create_product_images.sql",
		"carts":          "00008_create_carts.sql",
		"cart_items":     "00009_create_cart_items.sql",
		"orders":         "00010_create_orders.sql",
		"order_items":    "00011_create_order_items.sql",
		"reviews":        "00012_create_reviews.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)
		if !strings.Contains(contentStr, "CREATE TABLE "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(contentStr, "DROP TABLE "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductImagesHaveMainUniqueIndex(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00007_create_product_images.sql"))
	if err != nil {
		t.Fatalf("Failed to read product_images migration: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "CREATE UNIQUE INDEX uq_product_images_main") {
		t.Error("product_images migration missing the partial unique index on main images")
	}
	if !strings.Contains(contentStr, "WHERE is_main") {
		t.Error("main image index is not partial")
	}
}

func TestOrdersTableHasStatusConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00010_create_orders.sql"))
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}

	contentStr := string(content)
	requiredStatuses := []string{"pending", "confirmed", "shipped", "delivered", "cancelled"}
	for _, status := range requiredStatuses {
		if !strings.Contains(contentStr, status) {
			t.Errorf("Orders table status constraint missing value: %s", status)
		}
	}
}

func TestCartItemsTableHasUniqueConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00009_create_cart_items.sql"))
	if err != nil {
		t.Fatalf("Failed to read cart_items migration: %v", err)
	}

	if !strings.Contains(string(content), "UNIQUE (cart_id, product_kind, product_id)") {
		t.Error("Cart items table missing unique constraint on (cart_id, product_kind, product_id)")
	}
}

func TestReviewsTableHasUniqueConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00012_create_reviews.sql"))
	if err != nil {
		t.Fatalf("Failed to read reviews migration: %v", err)
	}

	if !strings.Contains(string(content), "UNIQUE (product_kind, product_id, user_id)") {
		t.Error("Reviews table missing unique constraint on (product_kind, product_id, user_id)")
	}
}
