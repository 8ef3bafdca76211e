package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Rustam650/prokolesa/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// Ordering values accepted from the API, mapped to safe ORDER BY clauses.
var productOrderings = map[string]string{
	"sales_count":  "p.sales_count ASC",
	"-sales_count": "p.sales_count DESC",
	"price":        "p.price ASC",
	"-price":       "p.price DESC",
	"created_at":   "p.created_at ASC",
	"-created_at":  "p.created_at DESC",
	"rating":       "p.rating ASC",
	"-rating":      "p.rating DESC",
	"name":         "p.name ASC",
	"-name":        "p.name DESC",
}

// DefaultOrdering is applied when the caller passes nothing recognizable.
const DefaultOrdering = "-sales_count"

// ProductFilter carries every list-endpoint parameter. Kind selects the
// table; the dimensional fields only apply to their own kind and are
// ignored otherwise.
type ProductFilter struct {
	Kind       domain.ProductKind
	Search     string
	BrandSlugs []string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    bool

	// Tire-only filters.
	Season       string
	TireWidth    *int
	TireProfile  *int
	TireDiameter *int

	// Wheel-only filters.
	WheelWidth    *float64
	WheelDiameter *float64
	BoltPattern   string
	WheelType     string
	OffsetFrom    *int
	OffsetTo      *int

	Ordering string
	Page     int
	PageSize int
}

// ProductRepository is the single data-access point for both product
// tables. Every read resolves through the tagged ProductRef union rather
// than a dynamic type lookup.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByRef(ctx context.Context, ref domain.ProductRef) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByAnyID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
	FindFeatured(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error)
	FindBestsellers(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error)
	FindNewest(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func tableFor(kind domain.ProductKind) string {
	if kind == domain.ProductKindWheel {
		return "wheel_products"
	}
	return "tire_products"
}

// Columns shared by both product tables, in scan order.
const commonColumns = `p.id, p.name, p.slug, p.sku, p.barcode, p.category_id, p.brand_id,
	p.short_description, p.description, p.price, p.old_price, p.cost_price, p.discount_percent,
	p.stock_quantity, p.min_stock_level, p.max_stock_level, p.weight,
	p.is_active, p.is_featured, p.is_bestseller, p.is_new, p.is_on_sale,
	p.rating, p.reviews_count, p.views_count, p.sales_count,
	p.meta_title, p.meta_description, p.meta_keywords, p.created_at, p.updated_at`

const tireColumns = commonColumns + `,
	p.season, p.width, p.profile, p.diameter, p.load_index, p.speed_index,
	p.tread_pattern, p.sidewall_type, p.run_flat, p.reinforced, p.studded,
	p.fuel_efficiency, p.wet_grip, p.noise_level`

const wheelColumns = commonColumns + `,
	p.diameter, p.width, p.bolt_pattern, p.center_bore, p.wheel_offset,
	p.wheel_type, p.material, p.color, p.finish`

const brandJoinColumns = `b.id, b.name, b.slug, b.logo, b.website, b.product_types,
	b.rating, b.popularity_score, b.country, b.is_active, b.is_featured`

const categoryJoinColumns = `c.id, c.name, c.slug, c.icon, c.parent_id, c.is_active, c.sort_order`

func selectColumns(kind domain.ProductKind) string {
	if kind == domain.ProductKindWheel {
		return wheelColumns + ", " + brandJoinColumns + ", " + categoryJoinColumns
	}
	return tireColumns + ", " + brandJoinColumns + ", " + categoryJoinColumns
}

func baseQuery(kind domain.ProductKind) string {
	return fmt.Sprintf(`
		SELECT %s
		FROM %s p
		JOIN brands b ON b.id = p.brand_id
		JOIN categories c ON c.id = p.category_id`,
		selectColumns(kind), tableFor(kind))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner, kind domain.ProductKind) (*domain.Product, error) {
	p := &domain.Product{Kind: kind}
	brand := &domain.Brand{}
	category := &domain.Category{}

	var (
		oldPrice  sql.NullFloat64
		costPrice sql.NullFloat64
		weight    sql.NullFloat64
		parentID  sql.NullInt64
	)

	common := []interface{}{
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Barcode, &p.CategoryID, &p.BrandID,
		&p.ShortDescription, &p.Description, &p.Price, &oldPrice, &costPrice, &p.DiscountPercent,
		&p.StockQuantity, &p.MinStockLevel, &p.MaxStockLevel, &weight,
		&p.IsActive, &p.IsFeatured, &p.IsBestseller, &p.IsNew, &p.IsOnSale,
		&p.Rating, &p.ReviewsCount, &p.ViewsCount, &p.SalesCount,
		&p.MetaTitle, &p.MetaDescription, &p.MetaKeywords, &p.CreatedAt, &p.UpdatedAt,
	}

	var dest []interface{}
	var noiseLevel sql.NullInt64

	switch kind {
	case domain.ProductKindWheel:
		p.Wheel = &domain.WheelSpecs{}
		dest = append(common,
			&p.Wheel.Diameter, &p.Wheel.Width, &p.Wheel.BoltPattern, &p.Wheel.CenterBore,
			&p.Wheel.Offset, &p.Wheel.WheelType, &p.Wheel.Material, &p.Wheel.Color, &p.Wheel.Finish,
		)
	default:
		p.Tire = &domain.TireSpecs{}
		dest = append(common,
			&p.Tire.Season, &p.Tire.Width, &p.Tire.Profile, &p.Tire.Diameter,
			&p.Tire.LoadIndex, &p.Tire.SpeedIndex, &p.Tire.TreadPattern, &p.Tire.SidewallType,
			&p.Tire.RunFlat, &p.Tire.Reinforced, &p.Tire.Studded,
			&p.Tire.FuelEfficiency, &p.Tire.WetGrip, &noiseLevel,
		)
	}

	dest = append(dest,
		&brand.ID, &brand.Name, &brand.Slug, &brand.LogoURL, &brand.Website, &brand.ProductTypes,
		&brand.Rating, &brand.PopularityScore, &brand.Country, &brand.IsActive, &brand.IsFeatured,
		&category.ID, &category.Name, &category.Slug, &category.Icon, &parentID,
		&category.IsActive, &category.SortOrder,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if oldPrice.Valid {
		p.OldPrice = &oldPrice.Float64
	}
	if costPrice.Valid {
		p.CostPrice = &costPrice.Float64
	}
	if weight.Valid {
		p.Weight = &weight.Float64
	}
	if p.Tire != nil && noiseLevel.Valid {
		n := int(noiseLevel.Int64)
		p.Tire.NoiseLevel = &n
	}
	if parentID.Valid {
		category.ParentID = &parentID.Int64
	}

	p.Brand = brand
	p.Category = category
	return p, nil
}

// Create inserts a product into its kind's table and fills in the
// generated id. Used by admin tooling and tests; the public API never
// writes products.
func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	switch p.Kind {
	case domain.ProductKindWheel:
		return r.createWheel(ctx, p)
	default:
		return r.createTire(ctx, p)
	}
}

func (r *productRepository) createTire(ctx context.Context, p *domain.Product) error {
	if p.Tire == nil {
		return fmt.Errorf("tire product %q has no tire specs", p.Name)
	}

	query := `
		INSERT INTO tire_products (
			name, slug, sku, barcode, category_id, brand_id,
			short_description, description, price, old_price, cost_price, discount_percent,
			stock_quantity, min_stock_level, max_stock_level, weight,
			is_active, is_featured, is_bestseller, is_new, is_on_sale,
			rating, reviews_count, views_count, sales_count,
			meta_title, meta_description, meta_keywords,
			season, width, profile, diameter, load_index, speed_index,
			tread_pattern, sidewall_type, run_flat, reinforced, studded,
			fuel_efficiency, wet_grip, noise_level,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31,
			$32, $33, $34, $35, $36, $37, $38, $39, $40, $41, $42, $43, $44)
		RETURNING id
	`

	var noise sql.NullInt64
	if p.Tire.NoiseLevel != nil {
		noise = sql.NullInt64{Int64: int64(*p.Tire.NoiseLevel), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.SKU, p.Barcode, p.CategoryID, p.BrandID,
		p.ShortDescription, p.Description, p.Price, p.OldPrice, p.CostPrice, p.DiscountPercent,
		p.StockQuantity, p.MinStockLevel, p.MaxStockLevel, p.Weight,
		p.IsActive, p.IsFeatured, p.IsBestseller, p.IsNew, p.IsOnSale,
		p.Rating, p.ReviewsCount, p.ViewsCount, p.SalesCount,
		p.MetaTitle, p.MetaDescription, p.MetaKeywords,
		p.Tire.Season, p.Tire.Width, p.Tire.Profile, p.Tire.Diameter,
		p.Tire.LoadIndex, p.Tire.SpeedIndex, p.Tire.TreadPattern, p.Tire.SidewallType,
		p.Tire.RunFlat, p.Tire.Reinforced, p.Tire.Studded,
		p.Tire.FuelEfficiency, p.Tire.WetGrip, noise,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlugOrSKU
		}
		return fmt.Errorf("failed to create tire product: %w", err)
	}
	return nil
}

func (r *productRepository) createWheel(ctx context.Context, p *domain.Product) error {
	if p.Wheel == nil {
		return fmt.Errorf("wheel product %q has no wheel specs", p.Name)
	}

	query := `
		INSERT INTO wheel_products (
			name, slug, sku, barcode, category_id, brand_id,
			short_description, description, price, old_price, cost_price, discount_percent,
			stock_quantity, min_stock_level, max_stock_level, weight,
			is_active, is_featured, is_bestseller, is_new, is_on_sale,
			rating, reviews_count, views_count, sales_count,
			meta_title, meta_description, meta_keywords,
			diameter, width, bolt_pattern, center_bore, wheel_offset,
			wheel_type, material, color, finish,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31,
			$32, $33, $34, $35, $36, $37, $38, $39)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.SKU, p.Barcode, p.CategoryID, p.BrandID,
		p.ShortDescription, p.Description, p.Price, p.OldPrice, p.CostPrice, p.DiscountPercent,
		p.StockQuantity, p.MinStockLevel, p.MaxStockLevel, p.Weight,
		p.IsActive, p.IsFeatured, p.IsBestseller, p.IsNew, p.IsOnSale,
		p.Rating, p.ReviewsCount, p.ViewsCount, p.SalesCount,
		p.MetaTitle, p.MetaDescription, p.MetaKeywords,
		p.Wheel.Diameter, p.Wheel.Width, p.Wheel.BoltPattern, p.Wheel.CenterBore, p.Wheel.Offset,
		p.Wheel.WheelType, p.Wheel.Material, p.Wheel.Color, p.Wheel.Finish,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlugOrSKU
		}
		return fmt.Errorf("failed to create wheel product: %w", err)
	}
	return nil
}

// FindByRef resolves an active product through the tagged reference.
func (r *productRepository) FindByRef(ctx context.Context, ref domain.ProductRef) (*domain.Product, error) {
	query := baseQuery(ref.Kind) + ` WHERE p.id = $1 AND p.is_active = true`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, ref.ID), ref.Kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product %s: %w", ref, err)
	}
	return product, nil
}

// FindBySlug resolves a slug against both tables, tires first.
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, kind := range []domain.ProductKind{domain.ProductKindTire, domain.ProductKindWheel} {
		query := baseQuery(kind) + ` WHERE p.slug = $1 AND p.is_active = true`
		product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug), kind)
		if err == nil {
			return product, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to find product by slug: %w", err)
		}
	}
	return nil, ErrProductNotFound
}

// FindByAnyID resolves a bare numeric id against both tables, tires first.
// Kept for clients that predate the product_type parameter.
func (r *productRepository) FindByAnyID(ctx context.Context, id int64) (*domain.Product, error) {
	for _, kind := range []domain.ProductKind{domain.ProductKindTire, domain.ProductKindWheel} {
		product, err := r.FindByRef(ctx, domain.ProductRef{Kind: kind, ID: id})
		if err == nil {
			return product, nil
		}
		if err != ErrProductNotFound {
			return nil, err
		}
	}
	return nil, ErrProductNotFound
}

// List applies the filter, counts the full result set and returns one page.
func (r *productRepository) List(ctx context.Context, f ProductFilter) ([]*domain.Product, int, error) {
	kind := f.Kind
	if !kind.Valid() {
		kind = domain.ProductKindTire
	}

	where := []string{"p.is_active = true"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		ph := arg(pattern)
		where = append(where, fmt.Sprintf(
			"(p.name ILIKE %s OR b.name ILIKE %s OR p.description ILIKE %s)", ph, ph, ph))
	}
	if len(f.BrandSlugs) == 1 {
		where = append(where, "b.slug = "+arg(f.BrandSlugs[0]))
	} else if len(f.BrandSlugs) > 1 {
		placeholders := make([]string, len(f.BrandSlugs))
		for i, slug := range f.BrandSlugs {
			placeholders[i] = arg(slug)
		}
		where = append(where, "b.slug IN ("+strings.Join(placeholders, ", ")+")")
	}
	if f.MinPrice != nil {
		where = append(where, "p.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "p.price <= "+arg(*f.MaxPrice))
	}
	if f.InStock {
		where = append(where, "p.stock_quantity > 0")
	}

	if kind == domain.ProductKindTire {
		if f.Season != "" {
			where = append(where, "p.season = "+arg(f.Season))
		}
		if f.TireWidth != nil {
			where = append(where, "p.width = "+arg(*f.TireWidth))
		}
		if f.TireProfile != nil {
			where = append(where, "p.profile = "+arg(*f.TireProfile))
		}
		if f.TireDiameter != nil {
			where = append(where, "p.diameter = "+arg(*f.TireDiameter))
		}
	} else {
		if f.WheelWidth != nil {
			where = append(where, "p.width = "+arg(*f.WheelWidth))
		}
		if f.WheelDiameter != nil {
			where = append(where, "p.diameter = "+arg(*f.WheelDiameter))
		}
		if f.BoltPattern != "" {
			where = append(where, "p.bolt_pattern = "+arg(f.BoltPattern))
		}
		if f.WheelType != "" {
			where = append(where, "p.wheel_type = "+arg(f.WheelType))
		}
		if f.OffsetFrom != nil {
			where = append(where, "p.wheel_offset >= "+arg(*f.OffsetFrom))
		}
		if f.OffsetTo != nil {
			where = append(where, "p.wheel_offset <= "+arg(*f.OffsetTo))
		}
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s p
		JOIN brands b ON b.id = p.brand_id
		JOIN categories c ON c.id = p.category_id
		%s`, tableFor(kind), whereClause)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy, ok := productOrderings[f.Ordering]
	if !ok {
		orderBy = productOrderings[DefaultOrdering]
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("%s %s ORDER BY %s LIMIT %s OFFSET %s",
		baseQuery(kind), whereClause, orderBy, arg(pageSize), arg(offset))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows, kind)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) findWhere(ctx context.Context, kind domain.ProductKind, condition, orderBy string, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf("%s WHERE p.is_active = true%s ORDER BY %s LIMIT $1",
		baseQuery(kind), condition, orderBy)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s products: %w", kind, err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// FindFeatured returns up to limit active featured products of one kind.
func (r *productRepository) FindFeatured(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error) {
	return r.findWhere(ctx, kind, " AND p.is_featured = true", "p.created_at DESC", limit)
}

// FindBestsellers returns the top sellers of one kind.
func (r *productRepository) FindBestsellers(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error) {
	return r.findWhere(ctx, kind, "", "p.sales_count DESC", limit)
}

// FindNewest returns the latest products flagged as new, of one kind.
func (r *productRepository) FindNewest(ctx context.Context, kind domain.ProductKind, limit int) ([]*domain.Product, error) {
	return r.findWhere(ctx, kind, " AND p.is_new = true", "p.created_at DESC", limit)
}
