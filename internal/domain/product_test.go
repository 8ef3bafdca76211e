package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_FinalPriceNeverExceedsPrice(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("discounted price is within [0, price]", prop.ForAll(
		func(price float64, discount int) bool {
			p := &Product{Price: price, DiscountPercent: discount}
			final := p.FinalPrice()
			return final >= 0 && final <= p.Price
		},
		gen.Float64Range(0, 1_000_000),
		gen.IntRange(0, 100),
	))

	properties.Property("zero discount leaves the price unchanged", prop.ForAll(
		func(price float64) bool {
			p := &Product{Price: price}
			return p.FinalPrice() == price
		},
		gen.Float64Range(0, 1_000_000),
	))

	properties.TestingRun(t)
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount int
		want     float64
	}{
		{"no discount", 6000, 0, 6000},
		{"ten percent", 6000, 10, 5400},
		{"full discount", 6000, 100, 0},
		{"half", 5000, 50, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: tt.price, DiscountPercent: tt.discount}
			if got := p.FinalPrice(); got != tt.want {
				t.Errorf("FinalPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStockStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		minLevel int
		want     string
	}{
		{"empty", 0, 5, StockStatusOut},
		{"at threshold", 5, 5, StockStatusLow},
		{"below threshold", 3, 5, StockStatusLow},
		{"above threshold", 6, 5, StockStatusIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{StockQuantity: tt.quantity, MinStockLevel: tt.minLevel}
			if got := p.StockStatus(); got != tt.want {
				t.Errorf("StockStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	p := &Product{Name: "Pilot Sport 4", Brand: &Brand{Name: "Michelin"}}
	if got := p.DisplayName(); got != "Michelin Pilot Sport 4" {
		t.Errorf("DisplayName() = %q", got)
	}

	p = &Product{Name: "Pilot Sport 4"}
	if got := p.DisplayName(); got != "Pilot Sport 4" {
		t.Errorf("DisplayName() without brand = %q", got)
	}
}

func TestMainImage(t *testing.T) {
	mainSVG := &ProductImage{ID: 1, URL: "/media/placeholder.svg", IsMain: true}
	firstSVG := &ProductImage{ID: 2, URL: "/media/other.svg"}
	real1 := &ProductImage{ID: 3, URL: "/media/photo1.jpg"}
	realMain := &ProductImage{ID: 4, URL: "/media/photo2.jpg", IsMain: true}

	tests := []struct {
		name   string
		images []*ProductImage
		want   *ProductImage
	}{
		{"no images", nil, nil},
		{"only placeholders", []*ProductImage{firstSVG, mainSVG}, mainSVG},
		{"placeholder flagged main loses to real image", []*ProductImage{mainSVG, real1}, real1},
		{"main real wins over other real", []*ProductImage{real1, realMain}, realMain},
		{"first placeholder as last resort", []*ProductImage{firstSVG}, firstSVG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MainImage(tt.images); got != tt.want {
				t.Errorf("MainImage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSortImages(t *testing.T) {
	svg := &ProductImage{ID: 1, URL: "/media/a.SVG"}
	jpg := &ProductImage{ID: 2, URL: "/media/b.jpg"}
	png := &ProductImage{ID: 3, URL: "/media/c.png"}

	sorted := SortImages([]*ProductImage{svg, jpg, png})
	if sorted[0] != jpg || sorted[1] != png || sorted[2] != svg {
		t.Errorf("SortImages() order = %v", []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	}
}

func TestTireSizeString(t *testing.T) {
	s := &TireSpecs{Width: 205, Profile: 55, Diameter: 16}
	if got := s.SizeString(); got != "205/55R16" {
		t.Errorf("SizeString() = %q", got)
	}
}
