package domain

import (
	"fmt"
	"time"
)

// ProductKind discriminates the two concrete product tables.
type ProductKind string

const (
	ProductKindTire  ProductKind = "tire"
	ProductKindWheel ProductKind = "wheel"
)

// Valid reports whether the kind is one of the known product tables.
func (k ProductKind) Valid() bool {
	return k == ProductKindTire || k == ProductKindWheel
}

// ProductRef is a closed, typed reference to a product row. Cart items,
// order items, reviews and images all point at products through it instead
// of a dynamic (content type, object id) pair.
type ProductRef struct {
	Kind ProductKind
	ID   int64
}

func (r ProductRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// Season values for tires.
const (
	SeasonSummer    = "summer"
	SeasonWinter    = "winter"
	SeasonAllSeason = "all_season"
)

// Wheel type values.
const (
	WheelTypeAlloy  = "alloy"
	WheelTypeSteel  = "steel"
	WheelTypeForged = "forged"
	WheelTypeCarbon = "carbon"
)

// Stock status values derived from stock_quantity.
const (
	StockStatusOut = "out_of_stock"
	StockStatusLow = "low_stock"
	StockStatusIn  = "in_stock"
)

// TireSpecs holds the tire-only attributes.
type TireSpecs struct {
	Season       string `json:"season"`
	Width        int    `json:"width"`
	Profile      int    `json:"profile"`
	Diameter     int    `json:"diameter"`
	LoadIndex    string `json:"load_index"`
	SpeedIndex   string `json:"speed_index"`
	TreadPattern string `json:"tread_pattern,omitempty"`
	SidewallType string `json:"sidewall_type,omitempty"`
	RunFlat      bool   `json:"run_flat"`
	Reinforced   bool   `json:"reinforced"`
	Studded      bool   `json:"studded"`

	// EU label fields; the label is only rendered when all three are set.
	FuelEfficiency string `json:"fuel_efficiency,omitempty"`
	WetGrip        string `json:"wet_grip,omitempty"`
	NoiseLevel     *int   `json:"noise_level,omitempty"`
}

// SizeString renders the tire size in the usual 205/55R16 notation.
func (s *TireSpecs) SizeString() string {
	return fmt.Sprintf("%d/%dR%d", s.Width, s.Profile, s.Diameter)
}

// WheelSpecs holds the wheel-only attributes.
type WheelSpecs struct {
	Diameter    float64 `json:"diameter"`
	Width       float64 `json:"width"`
	BoltPattern string  `json:"bolt_pattern"`
	CenterBore  float64 `json:"center_bore"`
	Offset      int     `json:"offset"`
	WheelType   string  `json:"wheel_type"`
	Material    string  `json:"material,omitempty"`
	Color       string  `json:"color,omitempty"`
	Finish      string  `json:"finish,omitempty"`
}

// Product is the unified sellable aggregate. Tires and wheels live in
// separate tables but share every field below; exactly one of Tire or
// Wheel is set according to Kind, so pricing, filtering and serialization
// are written once.
type Product struct {
	ID   int64       `json:"id"`
	Kind ProductKind `json:"product_type"`

	Name    string `json:"name"`
	Slug    string `json:"slug"`
	SKU     string `json:"sku"`
	Barcode string `json:"barcode,omitempty"`

	CategoryID int64 `json:"category_id"`
	BrandID    int64 `json:"brand_id"`

	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description,omitempty"`

	Price           float64  `json:"price"`
	OldPrice        *float64 `json:"old_price,omitempty"`
	CostPrice       *float64 `json:"-"`
	DiscountPercent int      `json:"discount_percent"`

	StockQuantity int `json:"stock_quantity"`
	MinStockLevel int `json:"min_stock_level"`
	MaxStockLevel int `json:"max_stock_level"`

	Weight *float64 `json:"weight,omitempty"`

	IsActive     bool `json:"is_active"`
	IsFeatured   bool `json:"is_featured"`
	IsBestseller bool `json:"is_bestseller"`
	IsNew        bool `json:"is_new"`
	IsOnSale     bool `json:"is_on_sale"`

	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviews_count"`
	ViewsCount   int     `json:"views_count"`
	SalesCount   int     `json:"sales_count"`

	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tire  *TireSpecs  `json:"tire_specs,omitempty"`
	Wheel *WheelSpecs `json:"wheel_specs,omitempty"`

	// Joined rows, populated by the repository.
	Brand    *Brand    `json:"brand,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// Ref returns the typed reference to this product row.
func (p *Product) Ref() ProductRef {
	return ProductRef{Kind: p.Kind, ID: p.ID}
}

// FinalPrice is the effective selling price after the discount.
func (p *Product) FinalPrice() float64 {
	if p.DiscountPercent > 0 {
		return p.Price * float64(100-p.DiscountPercent) / 100
	}
	return p.Price
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// StockStatus classifies the current stock level.
func (p *Product) StockStatus() string {
	switch {
	case p.StockQuantity == 0:
		return StockStatusOut
	case p.StockQuantity <= p.MinStockLevel:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// DisplayName is the snapshot name stored on order items: brand plus model.
func (p *Product) DisplayName() string {
	if p.Brand != nil && p.Brand.Name != "" {
		return p.Brand.Name + " " + p.Name
	}
	return p.Name
}
