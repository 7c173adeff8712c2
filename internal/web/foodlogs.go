package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stealthomikey/caloriequest/internal/foodlog"
	"github.com/stealthomikey/caloriequest/internal/service"
)

// Summary returns the daily view. The store is loaded on first use only; POST
// /api/foodlogs/refresh reloads it.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	cfg := h.settings.FoodLogConfig()
	day, err := service.ParseDay(r.URL.Query().Get("date"), h.now(), cfg.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if err := h.ensureLoaded(r); err != nil {
		if errors.Is(err, foodlog.ErrSuperseded) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "food logs are still loading")
			return
		}
		h.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Summary(day, cfg))
}

// ensureLoaded runs at most one first-use load at a time. Requests queued behind it
// reuse its snapshot. ErrSuperseded is returned only while the store is still empty.
func (h *Handler) ensureLoaded(r *http.Request) error {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	if h.store.Loaded() {
		return nil
	}
	err := h.store.Refresh(r.Context())
	if errors.Is(err, foodlog.ErrSuperseded) && h.store.Loaded() {
		return nil
	}
	return err
}

func (h *Handler) RefreshFoodLogs(w http.ResponseWriter, r *http.Request) {
	err := h.store.Refresh(r.Context())
	if errors.Is(err, foodlog.ErrSuperseded) {
		writeError(w, http.StatusConflict, "a newer refresh replaced this one")
		return
	}
	if err != nil {
		h.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Summary(h.now(), h.settings.FoodLogConfig()))
}

func (h *Handler) ListFoodLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	state := h.store.RefreshState()
	body := map[string]any{
		"loaded":   h.store.Loaded(),
		"refresh":  state.Phase.String(),
		"entries":  len(h.store.Snapshot()),
		"deleting": h.store.InFlightDeletes(),
	}
	if state.Err != nil {
		body["error"] = state.Err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) DeleteFoodLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid food log id")
		return
	}
	err = h.store.Delete(r.Context(), id)
	var de *foodlog.DeletionError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, foodlog.ErrDeleteInFlight):
		writeError(w, http.StatusConflict, "delete already in progress")
	case errors.As(err, &de):
		h.logger.Warn("food log delete failed", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, de.Message)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeFetchError(w http.ResponseWriter, err error) {
	var fe *foodlog.FetchError
	if errors.As(err, &fe) {
		h.logger.Warn("food log refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, fe.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
