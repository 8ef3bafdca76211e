package domain

import (
	"strings"
	"time"
)

// Category is a node in the catalog tree.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image,omitempty"`
	Icon        string `json:"icon,omitempty"`

	ParentID *int64 `json:"parent,omitempty"`

	IsActive  bool `json:"is_active"`
	SortOrder int  `json:"sort_order"`

	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Brand product type values.
const (
	BrandTypeTire      = "tire"
	BrandTypeWheel     = "wheel"
	BrandTypeBoth      = "both"
	BrandTypeAccessory = "accessory"
)

// Brand is a manufacturer.
type Brand struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logo,omitempty"`
	Website     string `json:"website,omitempty"`

	// Which product families the brand covers: tire, wheel, both or accessory.
	ProductTypes string `json:"product_types"`

	Rating          float64 `json:"rating"`
	PopularityScore int     `json:"popularity_score"`
	Country         string  `json:"country,omitempty"`

	IsActive   bool `json:"is_active"`
	IsFeatured bool `json:"is_featured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductImage is attached to a product row through a ProductRef.
// Seed data uses SVG placeholders, so presentation always prefers a real
// raster image over a placeholder regardless of the is_main flag.
type ProductImage struct {
	ID      int64      `json:"id"`
	Product ProductRef `json:"-"`

	URL     string `json:"image"`
	AltText string `json:"alt_text,omitempty"`
	Title   string `json:"title,omitempty"`

	IsMain    bool `json:"is_main"`
	SortOrder int  `json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
}

// IsPlaceholder reports whether the image is an SVG placeholder.
func (i *ProductImage) IsPlaceholder() bool {
	return strings.HasSuffix(strings.ToLower(i.URL), ".svg")
}

// SortImages returns the images with real ones ahead of SVG placeholders,
// preserving the incoming (sort_order, created_at) order within each group.
func SortImages(images []*ProductImage) []*ProductImage {
	real := make([]*ProductImage, 0, len(images))
	placeholders := make([]*ProductImage, 0)
	for _, img := range images {
		if img.IsPlaceholder() {
			placeholders = append(placeholders, img)
		} else {
			real = append(real, img)
		}
	}
	return append(real, placeholders...)
}

// MainImage picks the presentation image for a product. Preference order:
// main-flagged real image, any real image, main-flagged placeholder, first
// placeholder. Returns nil when the product has no images at all.
func MainImage(images []*ProductImage) *ProductImage {
	var anyReal, mainSVG, firstSVG *ProductImage
	for _, img := range images {
		if img.IsPlaceholder() {
			if img.IsMain && mainSVG == nil {
				mainSVG = img
			}
			if firstSVG == nil {
				firstSVG = img
			}
			continue
		}
		if img.IsMain {
			return img
		}
		if anyReal == nil {
			anyReal = img
		}
	}
	if anyReal != nil {
		return anyReal
	}
	if mainSVG != nil {
		return mainSVG
	}
	return firstSVG
}
