package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/model"
	"github.com/stealthomikey/caloriequest/internal/provider/openfoodfacts"
	"github.com/stealthomikey/caloriequest/internal/service"
)

func TestLookupProductRejectsInvalidBarcode(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"", "1234567", "12345678901234567", "12ab5678"} {
		if _, err := service.LookupProduct(context.Background(), &fakeAPI{}, &fakeOFF{}, code, service.LookupOptions{}); err == nil {
			t.Fatalf("expected invalid barcode error for %q", code)
		}
	}
}

func TestLookupProductPrefersBackend(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{products: map[string]model.FoodProduct{cola.Code: cola}}
	off := &fakeOFF{}
	res, err := service.LookupProduct(context.Background(), api, off, cola.Code, service.LookupOptions{Fallback: true})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if res.Source != service.ProductSourceBackend || res.Product.ProductName != "Cola" || off.calls != 0 {
		t.Fatalf("unexpected result %+v (off calls %d)", res, off.calls)
	}
}

func TestLookupProductFallsBackOnNotFound(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{lookupErr: &backend.APIError{Method: "GET", Path: "/products/x", StatusCode: 404}}
	off := &fakeOFF{product: model.FoodProduct{ProductName: "Oat Drink"}}

	_, err := service.LookupProduct(context.Background(), api, off, "7394376616228", service.LookupOptions{})
	if !errors.Is(err, service.ErrProductNotFound) {
		t.Fatalf("expected not found without fallback, got %v", err)
	}

	res, err := service.LookupProduct(context.Background(), api, off, "7394376616228", service.LookupOptions{Fallback: true})
	if err != nil {
		t.Fatalf("fallback lookup: %v", err)
	}
	if res.Source != service.ProductSourceOpenFoodFacts || res.Product.Code != "7394376616228" {
		t.Fatalf("unexpected fallback result: %+v", res)
	}
}

func TestLookupProductDoesNotFallBackOnServerError(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{lookupErr: &backend.APIError{Method: "GET", Path: "/products/x", StatusCode: 500}}
	off := &fakeOFF{}
	if _, err := service.LookupProduct(context.Background(), api, off, "7394376616228", service.LookupOptions{Fallback: true}); err == nil {
		t.Fatalf("expected error")
	}
	if off.calls != 0 {
		t.Fatalf("open food facts should not be queried on a server error")
	}
}

func TestLookupProductDirect(t *testing.T) {
	t.Parallel()

	off := &fakeOFF{err: openfoodfacts.ErrProductNotFound}
	_, err := service.LookupProduct(context.Background(), &fakeAPI{}, off, "7394376616228", service.LookupOptions{Direct: true})
	if !errors.Is(err, service.ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if off.calls != 1 {
		t.Fatalf("expected one direct call, got %d", off.calls)
	}
}
