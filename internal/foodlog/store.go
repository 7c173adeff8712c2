package foodlog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/stealthomikey/caloriequest/internal/model"
)

// Backend is the remote side of the store.
type Backend interface {
	FoodLogHistory(ctx context.Context) ([]model.LoggedFoodEntry, error)
	DeleteFoodLog(ctx context.Context, id int64) error
}

// Store holds the current user's food-log snapshot. Deletes are applied by id filter
// after the backend confirms them, and a refresh that finishes after a newer one
// started is dropped.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.Mutex
	entries []model.LoggedFoodEntry
	loaded  bool
	gen     uint64
	// ids confirmed deleted while the current refresh is in flight
	deletedDuringRefresh map[int64]struct{}
	refresh              OpState
	deletes              map[int64]OpState
}

func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		deletes: make(map[int64]OpState),
	}
}

// Refresh replaces the snapshot with the backend's history. On failure the store is
// emptied and a *FetchError is returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.deletedDuringRefresh = make(map[int64]struct{})
	s.refresh = OpState{Phase: PhaseInFlight}
	s.mu.Unlock()

	entries, err := s.backend.FoodLogHistory(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding stale food-log refresh", "generation", gen, "current", s.gen)
		return ErrSuperseded
	}
	deleted := s.deletedDuringRefresh
	s.deletedDuringRefresh = nil
	if err != nil {
		fe := newFetchError(err)
		s.entries = nil
		s.loaded = false
		s.refresh = OpState{Phase: PhaseFailed, Err: fe}
		return fe
	}

	seen := make(map[int64]struct{}, len(entries))
	out := make([]model.LoggedFoodEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			s.logger.Warn("dropping duplicate food-log entry", "id", e.ID)
			continue
		}
		seen[e.ID] = struct{}{}
		if _, ok := deleted[e.ID]; ok {
			continue
		}
		out = append(out, e)
	}
	s.entries = out
	s.loaded = true
	s.refresh = OpState{Phase: PhaseSucceeded}
	return nil
}

// Delete removes id on the backend and then from the snapshot. A failed delete leaves
// the snapshot untouched and returns a *DeletionError. Deletes of different ids may
// run concurrently; a second delete of an id already in flight gets ErrDeleteInFlight.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("food log id must be > 0")
	}
	s.mu.Lock()
	if s.deletes[id].Busy() {
		s.mu.Unlock()
		return fmt.Errorf("delete food log %d: %w", id, ErrDeleteInFlight)
	}
	s.deletes[id] = OpState{Phase: PhaseInFlight}
	s.mu.Unlock()

	err := s.backend.DeleteFoodLog(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		de := newDeletionError(id, err)
		s.deletes[id] = OpState{Phase: PhaseFailed, Err: de}
		return de
	}
	s.entries = removeByID(s.entries, id)
	if s.deletedDuringRefresh != nil {
		s.deletedDuringRefresh[id] = struct{}{}
	}
	s.deletes[id] = OpState{Phase: PhaseSucceeded}
	return nil
}

type DeleteResult struct {
	ID  int64
	Err error
}

// DeleteAll deletes ids concurrently and returns one result per distinct id, in order
// of first appearance.
func (s *Store) DeleteAll(ctx context.Context, ids []int64) []DeleteResult {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	results := make([]DeleteResult, len(unique))
	var wg sync.WaitGroup
	for i, id := range unique {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			results[i] = DeleteResult{ID: id, Err: s.Delete(ctx, id)}
		}(i, id)
	}
	wg.Wait()
	return results
}

func (s *Store) Snapshot() []model.LoggedFoodEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LoggedFoodEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Summary derives the daily view from the snapshot held at call time.
func (s *Store) Summary(now time.Time, cfg Config) Summary {
	summary := Summarize(s.Snapshot(), now, cfg)
	for _, issue := range summary.Issues {
		s.logger.Warn("excluding food-log entry from daily totals", "error", issue)
	}
	return summary
}

func (s *Store) RefreshState() OpState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *Store) DeleteState(id int64) OpState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes[id]
}

// InFlightDeletes lists the ids whose delete has not settled yet, ascending.
func (s *Store) InFlightDeletes() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0)
	for id, st := range s.deletes {
		if st.Busy() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func removeByID(entries []model.LoggedFoodEntry, id int64) []model.LoggedFoodEntry {
	out := make([]model.LoggedFoodEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
