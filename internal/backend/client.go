package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/stealthomikey/caloriequest/internal/model"
)

const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultCookieName = "session"
	defaultUserAgent  = "caloriequest-cli/1.0"
	requestIDHeader   = "X-Request-ID"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNotFound        = errors.New("not found")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) HTTPStatus() int      { return e.StatusCode }
func (e *APIError) ServerDetail() string { return e.Detail }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Client talks to the CalorieQuest API. The zero value targets DefaultBaseURL without
// a session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	CookieName string
	Session    string
	UserAgent  string
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base
}

func (c *Client) LoginURL() string  { return c.baseURL() + "/auth/login" }
func (c *Client) LogoutURL() string { return c.baseURL() + "/auth/logout" }

func (c *Client) FoodLogHistory(ctx context.Context) ([]model.LoggedFoodEntry, error) {
	entries := make([]model.LoggedFoodEntry, 0)
	if err := c.do(ctx, http.MethodGet, "/food-logs/history", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) DeleteFoodLog(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/food-logs/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// CurrentUser returns the signed-in user. A 401 is reported as ErrUnauthenticated.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, nil, &u); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &u, nil
}

func (c *Client) LookupProduct(ctx context.Context, barcode string) (model.FoodProduct, error) {
	var p model.FoodProduct
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(barcode), nil, nil, &p); err != nil {
		return model.FoodProduct{}, err
	}
	return p, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0)
	if err := c.do(ctx, http.MethodGet, "/user/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in model.ProductCreate) (model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodPost, "/user/products", nil, in, &p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (c *Client) LogMeal(ctx context.Context, in model.MealCreate) (model.LoggedMeal, error) {
	var m model.LoggedMeal
	if err := c.do(ctx, http.MethodPost, "/user/meals/log", nil, in, &m); err != nil {
		return model.LoggedMeal{}, err
	}
	return m, nil
}

func (c *Client) RecipeSuggestions(ctx context.Context) ([]model.APIRecipe, error) {
	recipes := make([]model.APIRecipe, 0)
	if err := c.do(ctx, http.MethodGet, "/meals/suggestions", nil, nil, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// SearchRecipes treats a 404 as an empty result.
func (c *Client) SearchRecipes(ctx context.Context, query string) ([]model.APIRecipe, error) {
	recipes := make([]model.APIRecipe, 0)
	q := url.Values{"query": []string{query}}
	if err := c.do(ctx, http.MethodGet, "/meals/search", q, nil, &recipes); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.APIRecipe{}, nil
		}
		return nil, err
	}
	return recipes, nil
}

func (c *Client) Recipe(ctx context.Context, id string) (model.APIRecipe, error) {
	var r model.APIRecipe
	if err := c.do(ctx, http.MethodGet, "/meals/"+url.PathEscape(id), nil, nil, &r); err != nil {
		return model.APIRecipe{}, err
	}
	return r, nil
}

// Logout ends the session on the backend. The endpoint answers with a redirect to the
// web frontend, which is not followed; any status below 400 counts as success.
func (c *Client) Logout(ctx context.Context) error {
	const path = "/auth/logout"
	req, requestID, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	hc := *c.httpClient()
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("execute GET %s request: %w", path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return &APIError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(raw),
			RequestID:  requestID,
		}
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, string, error) {
	u := c.baseURL() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, "", fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	if c.Session != "" {
		name := c.CookieName
		if name == "" {
			name = DefaultCookieName
		}
		req.AddCookie(&http.Cookie{Name: name, Value: c.Session})
	}
	return req, requestID, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req, requestID, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("execute %s %s request: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(raw),
			RequestID:  requestID,
		}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// parseDetail extracts the error message from a {"detail": ...} body. FastAPI sends a
// string for HTTPException and a list of {"msg": ...} objects for validation errors.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
