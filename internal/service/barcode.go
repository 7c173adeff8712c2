package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/model"
	"github.com/stealthomikey/caloriequest/internal/provider/openfoodfacts"
)

const (
	ProductSourceBackend       = "backend"
	ProductSourceOpenFoodFacts = "openfoodfacts"
)

var ErrProductNotFound = errors.New("product not found")

// ProductLookup resolves a barcode through the CalorieQuest API.
type ProductLookup interface {
	LookupProduct(ctx context.Context, barcode string) (model.FoodProduct, error)
}

// BarcodeLookup resolves a barcode against Open Food Facts directly.
type BarcodeLookup interface {
	LookupBarcode(ctx context.Context, barcode string) (model.FoodProduct, error)
}

type LookupOptions struct {
	// Direct skips the backend and queries Open Food Facts.
	Direct bool
	// Fallback queries Open Food Facts when the backend has no product.
	Fallback bool
}

type LookupResult struct {
	Source  string            `json:"source"`
	Product model.FoodProduct `json:"product"`
}

func LookupProduct(ctx context.Context, api ProductLookup, off BarcodeLookup, barcode string, opts LookupOptions) (LookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return LookupResult{}, fmt.Errorf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	if opts.Direct {
		return lookupOpenFoodFacts(ctx, off, barcode)
	}

	p, err := api.LookupProduct(ctx, barcode)
	if err == nil {
		if p.Code == "" {
			p.Code = barcode
		}
		return LookupResult{Source: ProductSourceBackend, Product: p}, nil
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return LookupResult{}, fmt.Errorf("lookup barcode %s: %w", barcode, err)
	}
	if !opts.Fallback || off == nil {
		return LookupResult{}, fmt.Errorf("product with barcode %s: %w", barcode, ErrProductNotFound)
	}
	return lookupOpenFoodFacts(ctx, off, barcode)
}

func lookupOpenFoodFacts(ctx context.Context, off BarcodeLookup, barcode string) (LookupResult, error) {
	if off == nil {
		return LookupResult{}, fmt.Errorf("open food facts lookup is not configured")
	}
	p, err := off.LookupBarcode(ctx, barcode)
	if errors.Is(err, openfoodfacts.ErrProductNotFound) {
		return LookupResult{}, fmt.Errorf("product with barcode %s: %w", barcode, ErrProductNotFound)
	}
	if err != nil {
		return LookupResult{}, fmt.Errorf("lookup barcode %s on open food facts: %w", barcode, err)
	}
	return LookupResult{Source: ProductSourceOpenFoodFacts, Product: p}, nil
}
