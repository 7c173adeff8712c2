package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/foodlog"
	"github.com/stealthomikey/caloriequest/internal/model"
	"github.com/stealthomikey/caloriequest/internal/service"
	"github.com/stealthomikey/caloriequest/internal/web"
)

var fixedNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu         sync.Mutex
	entries    []model.LoggedFoodEntry
	historyErr error
	deleteErr  map[int64]error
	products   map[string]model.FoodProduct
	created    []model.ProductCreate
	meals      []model.MealCreate
	recipes    []model.APIRecipe

	historyCalls int
	// when set, the first history call signals historyStarted and waits on holdHistory
	holdHistory    chan struct{}
	historyStarted chan struct{}
	// when set, every delete sends its id on deleteStarted and waits on holdDelete
	holdDelete    chan struct{}
	deleteStarted chan int64
}

func (f *fakeBackend) FoodLogHistory(ctx context.Context) ([]model.LoggedFoodEntry, error) {
	f.mu.Lock()
	f.historyCalls++
	first := f.historyCalls == 1
	f.mu.Unlock()
	if first && f.holdHistory != nil {
		close(f.historyStarted)
		<-f.holdHistory
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := make([]model.LoggedFoodEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeBackend) DeleteFoodLog(ctx context.Context, id int64) error {
	if f.holdDelete != nil {
		f.deleteStarted <- id
		<-f.holdDelete
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr[id]
}

func (f *fakeBackend) ListProducts(ctx context.Context) ([]model.Product, error) {
	return []model.Product{{ID: 1, Name: "Cola"}}, nil
}

func (f *fakeBackend) LookupProduct(ctx context.Context, barcode string) (model.FoodProduct, error) {
	p, ok := f.products[barcode]
	if !ok {
		return model.FoodProduct{}, &backend.APIError{Method: "GET", Path: "/products/" + barcode, StatusCode: http.StatusNotFound}
	}
	return p, nil
}

func (f *fakeBackend) CreateProduct(ctx context.Context, in model.ProductCreate) (model.Product, error) {
	f.created = append(f.created, in)
	return model.Product{ID: 11, Name: in.Name}, nil
}

func (f *fakeBackend) LogMeal(ctx context.Context, in model.MealCreate) (model.LoggedMeal, error) {
	f.meals = append(f.meals, in)
	return model.LoggedMeal{ID: 70, ProductID: in.ProductID, QuantityGrams: in.QuantityGrams}, nil
}

func (f *fakeBackend) RecipeSuggestions(ctx context.Context) ([]model.APIRecipe, error) {
	return f.recipes, nil
}

func (f *fakeBackend) SearchRecipes(ctx context.Context, query string) ([]model.APIRecipe, error) {
	return f.recipes, nil
}

func (f *fakeBackend) Recipe(ctx context.Context, id string) (model.APIRecipe, error) {
	for _, r := range f.recipes {
		if r.IDMeal == id {
			return r, nil
		}
	}
	return model.APIRecipe{}, &backend.APIError{Method: "GET", Path: "/meals/" + id, StatusCode: http.StatusNotFound}
}

func newServer(t *testing.T, fb *fakeBackend) (http.Handler, *foodlog.Store) {
	t.Helper()
	store := foodlog.NewStore(fb, nil)
	settings := service.DefaultSettings()
	settings.Timezone = time.UTC
	h := web.New(store, fb, nil, settings, web.WithClock(func() time.Time { return fixedNow }))
	return h.Routes(), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleEntries() []model.LoggedFoodEntry {
	return []model.LoggedFoodEntry{
		{ID: 1, ProductName: "Oats", Calories: 250, Protein: 10, Carbohydrate: 30, Fat: 5, LoggedAt: "2026-03-10T08:00:00Z"},
		{ID: 2, ProductName: "Pizza", Calories: 700, Protein: 30, Carbohydrate: 80, Fat: 25, LoggedAt: "2026-03-09T20:00:00Z"},
		{ID: 3, ProductName: "Pasta", Calories: 500, Protein: 20, Carbohydrate: 60, Fat: 15, LoggedAt: "2026-03-10T12:30:00Z"},
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h, _ := newServer(t, &fakeBackend{})
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestSummaryLoadsStoreOnFirstUse(t *testing.T) {
	t.Parallel()

	h, store := newServer(t, &fakeBackend{entries: sampleEntries()})
	rec := do(t, h, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.Loaded())

	var s foodlog.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "2026-03-10", s.Date)
	assert.Equal(t, 750.0, s.Totals.Calories)
	assert.Equal(t, 1250.0, s.Feed.Goal.Remaining)
	assert.Len(t, s.Entries, 2)

	rec = do(t, h, http.MethodGet, "/api/summary?date=2026-03-09", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 700.0, s.Totals.Calories)

	rec = do(t, h, http.MethodGet, "/api/summary?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConcurrentFirstSummariesShareOneLoad(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		entries:        sampleEntries(),
		holdHistory:    make(chan struct{}),
		historyStarted: make(chan struct{}),
	}
	h, _ := newServer(t, fb)

	recs := make(chan *httptest.ResponseRecorder, 2)
	go func() { recs <- do(t, h, http.MethodGet, "/api/summary", "") }()
	<-fb.historyStarted
	go func() { recs <- do(t, h, http.MethodGet, "/api/summary", "") }()
	time.Sleep(20 * time.Millisecond)
	close(fb.holdHistory)

	for i := 0; i < 2; i++ {
		rec := <-recs
		require.Equal(t, http.StatusOK, rec.Code)
		var s foodlog.Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
		assert.Equal(t, 750.0, s.Totals.Calories)
		assert.Len(t, s.Entries, 2)
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, 1, fb.historyCalls)
}

func TestFirstSummaryOvertakenByRefreshStillServesData(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		entries:        sampleEntries(),
		holdHistory:    make(chan struct{}),
		historyStarted: make(chan struct{}),
	}
	h, store := newServer(t, fb)

	recs := make(chan *httptest.ResponseRecorder, 1)
	go func() { recs <- do(t, h, http.MethodGet, "/api/summary", "") }()
	<-fb.historyStarted

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/foodlogs/refresh", "").Code)
	require.True(t, store.Loaded())
	close(fb.holdHistory)

	rec := <-recs
	require.Equal(t, http.StatusOK, rec.Code)
	var s foodlog.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 750.0, s.Totals.Calories)
}

func TestRefreshFailureReportsDetail(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{historyErr: &backend.APIError{Method: "GET", Path: "/food-logs/history", StatusCode: 500, Detail: "database unavailable"}}
	h, store := newServer(t, fb)
	rec := do(t, h, http.MethodPost, "/api/foodlogs/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"detail":"database unavailable"}`, rec.Body.String())
	assert.False(t, store.Loaded())

	rec = do(t, h, http.MethodGet, "/api/state", "")
	var state map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "failed", state["refresh"])
	assert.Equal(t, false, state["loaded"])
}

func TestDeleteFoodLog(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		entries:   sampleEntries(),
		deleteErr: map[int64]error{2: &backend.APIError{Method: "DELETE", Path: "/food-logs/2", StatusCode: 403}},
	}
	h, store := newServer(t, fb)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/foodlogs/refresh", "").Code)

	rec := do(t, h, http.MethodDelete, "/api/foodlogs/3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/foodlogs/2", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"detail":"failed to delete food: HTTP status 403"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/foodlogs/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var ids []int64
	for _, e := range store.Snapshot() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestLookupAndLogProduct(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{products: map[string]model.FoodProduct{
		"5000112637922": {Code: "5000112637922", ProductName: "Cola", Nutriments: model.Nutriments{EnergyKcal100g: 42}},
	}}
	h, _ := newServer(t, fb)

	rec := do(t, h, http.MethodGet, "/api/products/5000112637922", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Source  string                   `json:"source"`
		Serving service.ServingNutrition `json:"serving"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, service.ProductSourceBackend, body.Source)
	assert.Equal(t, 42.0, body.Serving.Calories)

	rec = do(t, h, http.MethodPost, "/api/products/5000112637922/log", `{"grams": 330}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, fb.meals, 1)
	assert.Equal(t, model.MealCreate{ProductID: 11, QuantityGrams: 330}, fb.meals[0])

	rec = do(t, h, http.MethodGet, "/api/products/0000000000000?fallback=0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/products/12", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecipes(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{recipes: []model.APIRecipe{
		{IDMeal: "1", StrMeal: "Pie", StrInstructions: "Bake it. Eat it."},
		{IDMeal: "2", StrMeal: "Soup"},
	}}
	h, _ := newServer(t, fb)

	rec := do(t, h, http.MethodGet, "/api/recipes/suggestions?batches=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var recipes []model.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recipes))
	assert.Len(t, recipes, 2)
	assert.Equal(t, "Bake it.", recipes[0].Description)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/recipes/search?q=a", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/recipes/search?q=pie", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/recipes/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/recipes/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/recipes/suggestions?batches=0", "").Code)
}

func TestStateListsDeletesInFlight(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		entries:       sampleEntries(),
		holdDelete:    make(chan struct{}),
		deleteStarted: make(chan int64, 1),
	}
	h, _ := newServer(t, fb)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/foodlogs/refresh", "").Code)

	state := func() map[string]any {
		rec := do(t, h, http.MethodGet, "/api/state", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}
	assert.Equal(t, []any{}, state()["deleting"])

	done := make(chan int, 1)
	go func() { done <- do(t, h, http.MethodDelete, "/api/foodlogs/3", "").Code }()
	<-fb.deleteStarted

	assert.Equal(t, []any{float64(3)}, state()["deleting"])

	close(fb.holdDelete)
	assert.Equal(t, http.StatusNoContent, <-done)
	assert.Equal(t, []any{}, state()["deleting"])
	assert.Equal(t, float64(2), state()["entries"])
}

func TestSummaryTransportFailure(t *testing.T) {
	t.Parallel()

	h, _ := newServer(t, &fakeBackend{historyErr: errors.New("boom")})
	rec := do(t, h, http.MethodGet, "/api/summary", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"detail":"boom"}`, rec.Body.String())
}
