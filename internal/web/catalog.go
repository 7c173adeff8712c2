package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/service"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.ListProducts(r.Context())
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) LookupProduct(w http.ResponseWriter, r *http.Request) {
	res, ok := h.lookup(w, r)
	if !ok {
		return
	}
	serving, err := service.ScaleToServing(res.Product.Nutriments, service.DefaultServingGrams)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":  res.Source,
		"product": res.Product,
		"serving": serving,
	})
}

type logProductRequest struct {
	Grams float64 `json:"grams"`
}

func (h *Handler) LogProduct(w http.ResponseWriter, r *http.Request) {
	var in logProductRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Grams == 0 {
		in.Grams = service.DefaultServingGrams
	}
	if in.Grams < 0 {
		writeError(w, http.StatusBadRequest, "grams must be > 0")
		return
	}
	res, ok := h.lookup(w, r)
	if !ok {
		return
	}
	logged, err := service.LogScannedProduct(r.Context(), h.api, res.Product, in.Grams)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, logged)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (service.LookupResult, bool) {
	q := r.URL.Query()
	opts := service.LookupOptions{
		Direct:   q.Get("direct") == "1" || q.Get("direct") == "true",
		Fallback: q.Get("fallback") != "0" && q.Get("fallback") != "false",
	}
	res, err := service.LookupProduct(r.Context(), h.api, h.off, chi.URLParam(r, "barcode"), opts)
	if errors.Is(err, service.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return service.LookupResult{}, false
	}
	if err != nil {
		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return service.LookupResult{}, false
		}
		h.writeUpstreamError(w, err)
		return service.LookupResult{}, false
	}
	return res, true
}

func (h *Handler) SuggestRecipes(w http.ResponseWriter, r *http.Request) {
	batches := service.DefaultSuggestionBatches
	if raw := r.URL.Query().Get("batches"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 10 {
			writeError(w, http.StatusBadRequest, "batches must be between 1 and 10")
			return
		}
		batches = n
	}
	recipes, err := service.SuggestRecipes(r.Context(), h.api, batches)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *Handler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, searched, err := service.SearchRecipes(r.Context(), h.api, r.URL.Query().Get("q"))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	if !searched {
		writeError(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := service.GetRecipe(r.Context(), h.api, chi.URLParam(r, "id"))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// writeUpstreamError passes backend 401/404 through and reports everything else as 502.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusNotFound:
			writeError(w, apiErr.StatusCode, apiErr.Error())
			return
		}
	}
	h.logger.Warn("backend request failed", "error", err)
	writeError(w, http.StatusBadGateway, err.Error())
}
