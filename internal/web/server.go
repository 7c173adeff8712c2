package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stealthomikey/caloriequest/internal/foodlog"
	"github.com/stealthomikey/caloriequest/internal/model"
	"github.com/stealthomikey/caloriequest/internal/service"
)

// API is the slice of the backend client the dashboard server proxies.
type API interface {
	service.RecipeSource
	service.ProductLookup
	service.MealLogger
	ListProducts(ctx context.Context) ([]model.Product, error)
}

type Handler struct {
	store    *foodlog.Store
	api      API
	off      service.BarcodeLookup
	settings service.Settings
	logger   *slog.Logger
	now      func() time.Time

	// serializes the first-use load behind /api/summary
	loadMu sync.Mutex
}

type Option func(*Handler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

func New(store *foodlog.Store, api API, off service.BarcodeLookup, settings service.Settings, opts ...Option) *Handler {
	h := &Handler{
		store:    store,
		api:      api,
		off:      off,
		settings: settings,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if h.settings.RequestTimeout > 0 {
		r.Use(middleware.Timeout(h.settings.RequestTimeout))
	}

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", h.Summary)
		r.Get("/state", h.State)

		r.Get("/foodlogs", h.ListFoodLogs)
		r.Post("/foodlogs/refresh", h.RefreshFoodLogs)
		r.Delete("/foodlogs/{id}", h.DeleteFoodLog)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{barcode}", h.LookupProduct)
		r.Post("/products/{barcode}/log", h.LogProduct)

		r.Get("/recipes/suggestions", h.SuggestRecipes)
		r.Get("/recipes/search", h.SearchRecipes)
		r.Get("/recipes/{id}", h.GetRecipe)
	})
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger is middleware.Logger routed through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
