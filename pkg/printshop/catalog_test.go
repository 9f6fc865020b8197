package printshop

import (
	"errors"
	"testing"

	"brickpress/pkg/domain"
)

func TestCatalogPrices(t *testing.T) {
	tests := []struct {
		id    string
		price string
	}{
		{"poster-standard", "$19.99"},
		{"poster-large", "$34.99"},
		{"canvas-framed", "$89.99"},
		{"sticker-pack", "$12.99"},
	}
	if got := len(Products()); got != len(tests) {
		t.Fatalf("expected %d products, got %d", len(tests), got)
	}
	for _, tc := range tests {
		p, total, err := Quote(tc.id)
		if err != nil {
			t.Fatalf("quote %s: %v", tc.id, err)
		}
		if FormatPrice(total) != tc.price || p.PriceCents != total {
			t.Fatalf("%s: got %s want %s", tc.id, FormatPrice(total), tc.price)
		}
	}
}

func TestQuoteUnknownProduct(t *testing.T) {
	if _, _, err := Quote("mug"); !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct, got %v", err)
	}
}

func TestProductsReturnsCopy(t *testing.T) {
	p := Products()
	p[0].PriceCents = 1
	if fresh, _ := Lookup("poster-standard"); fresh.PriceCents != 1999 {
		t.Fatalf("catalog was mutated through Products()")
	}
}

func TestNormalizeShipping(t *testing.T) {
	got, err := NormalizeShipping(domain.Shipping{Name: " Ada ", Address: "1 Brick Rd", City: "Billund", Zip: " 7190 "})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Name != "Ada" || got.Zip != "7190" {
		t.Fatalf("fields not trimmed: %+v", got)
	}
	if _, err := NormalizeShipping(domain.Shipping{Name: "Ada", Address: "1 Brick Rd", City: " "}); !errors.Is(err, ErrShippingRequired) {
		t.Fatalf("expected ErrShippingRequired, got %v", err)
	}
}
