// Package printshop holds the print product catalog and order validation.
// Orders are mocked: nothing is charged and nothing is shipped.
package printshop

import (
	"errors"
	"fmt"
	"strings"

	"brickpress/pkg/domain"
)

var (
	ErrUnknownProduct   = errors.New("unknown product")
	ErrShippingRequired = errors.New("shipping name, address, city and zip are required")
)

var catalog = []domain.Product{
	{
		ID:          "poster-standard",
		Name:        "Standard Poster",
		Description: "High-quality matte finish poster paper. Perfect for framing.",
		PriceCents:  1999,
		Dimensions:  "12 x 16 inches",
		Type:        domain.ProductPoster,
		ImageRatio:  0.75,
	},
	{
		ID:          "poster-large",
		Name:        "Premium Art Print",
		Description: "Museum-quality archival paper with rich color reproduction.",
		PriceCents:  3499,
		Dimensions:  "18 x 24 inches",
		Type:        domain.ProductPoster,
		ImageRatio:  0.75,
	},
	{
		ID:          "canvas-framed",
		Name:        "Framed Canvas",
		Description: "Gallery-wrapped canvas in a sleek black floating frame.",
		PriceCents:  8999,
		Dimensions:  "16 x 20 inches",
		Type:        domain.ProductCanvas,
		ImageRatio:  0.8,
	},
	{
		ID:          "sticker-pack",
		Name:        "Die-Cut Sticker Pack",
		Description: "5x vinyl sticker sheet with glossy UV coating.",
		PriceCents:  1299,
		Dimensions:  "5 x 7 inches",
		Type:        domain.ProductSticker,
		ImageRatio:  0.71,
	},
}

// Products returns a copy of the catalog in display order.
func Products() []domain.Product {
	out := make([]domain.Product, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a product by id.
func Lookup(id string) (domain.Product, bool) {
	id = strings.TrimSpace(id)
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// NormalizeShipping trims every field and rejects incomplete addresses.
func NormalizeShipping(s domain.Shipping) (domain.Shipping, error) {
	s = domain.Shipping{
		Name:    strings.TrimSpace(s.Name),
		Address: strings.TrimSpace(s.Address),
		City:    strings.TrimSpace(s.City),
		Zip:     strings.TrimSpace(s.Zip),
	}
	if s.Name == "" || s.Address == "" || s.City == "" || s.Zip == "" {
		return domain.Shipping{}, ErrShippingRequired
	}
	return s, nil
}

// Quote returns the total for productID, validating the product.
func Quote(productID string) (domain.Product, int64, error) {
	p, ok := Lookup(productID)
	if !ok {
		return domain.Product{}, 0, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}
	return p, p.PriceCents, nil
}

// FormatPrice renders cents as dollars, e.g. 1999 -> "$19.99".
func FormatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
