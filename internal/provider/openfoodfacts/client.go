package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stealthomikey/caloriequest/internal/model"
)

const (
	defaultBaseURL   = "https://world.openfoodfacts.org"
	defaultUserAgent = "caloriequest-cli/1.0 (+https://github.com/stealthomikey/caloriequest)"
)

var ErrProductNotFound = errors.New("openfoodfacts product not found")

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// LookupBarcode returns the product with per-100g nutriments, the same shape the
// CalorieQuest backend serves from /products/{barcode}.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (model.FoodProduct, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	u := fmt.Sprintf("%s/api/v2/product/%s.json", base, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.FoodProduct{}, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httpClient.Do(req)
	if err != nil {
		return model.FoodProduct{}, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.FoodProduct{}, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return model.FoodProduct{}, fmt.Errorf("barcode %q: %w", barcode, ErrProductNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.FoodProduct{}, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.FoodProduct{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return model.FoodProduct{}, fmt.Errorf("barcode %q: %w", barcode, ErrProductNotFound)
	}

	p := parsed.Product
	code := strings.TrimSpace(p.Code)
	if code == "" {
		code = barcode
	}
	return model.FoodProduct{
		Code:        code,
		ProductName: strings.TrimSpace(p.ProductName),
		ImageURL:    strings.TrimSpace(p.ImageURL),
		Brand:       firstBrand(p.Brands),
		Quantity:    strings.TrimSpace(p.Quantity),
		ServingSize: strings.TrimSpace(p.ServingSize),
		Nutriments: model.Nutriments{
			EnergyKcal100g:    nutrientValue(p.Nutriments, "energy-kcal"),
			Fat100g:           nutrientValue(p.Nutriments, "fat"),
			Carbohydrates100g: nutrientValue(p.Nutriments, "carbohydrates"),
			Proteins100g:      nutrientValue(p.Nutriments, "proteins"),
		},
	}, nil
}

// firstBrand keeps the first entry of the comma-separated brands field.
func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func nutrientValue(n map[string]any, base string) float64 {
	if v, ok := parseFloatAny(n[base+"_100g"]); ok {
		return v
	}
	// energy-kcal_100g is missing on older products that only carry kJ
	if base == "energy-kcal" {
		if kj, ok := parseFloatAny(n["energy_100g"]); ok {
			return kj / 4.184
		}
	}
	return 0
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Brands      string         `json:"brands"`
	ImageURL    string         `json:"image_url"`
	Quantity    string         `json:"quantity"`
	ServingSize string         `json:"serving_size"`
	Nutriments  map[string]any `json:"nutriments"`
}
