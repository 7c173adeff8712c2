package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stealthomikey/caloriequest/internal/backend"
	cqdb "github.com/stealthomikey/caloriequest/internal/db"
	"github.com/stealthomikey/caloriequest/internal/foodlog"
	"github.com/stealthomikey/caloriequest/internal/model"
)

// DoctorAPI is what the doctor needs from the backend.
type DoctorAPI interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	FoodLogHistory(ctx context.Context) ([]model.LoggedFoodEntry, error)
}

type DoctorReport struct {
	SchemaVersion       int      `json:"schema_version"`
	InvalidConfigKeys   []string `json:"invalid_config_keys,omitempty"`
	SessionStored       bool     `json:"session_stored"`
	SessionValid        bool     `json:"session_valid"`
	HistoryEntries      int      `json:"history_entries"`
	MalformedTimestamps []int64  `json:"malformed_timestamps,omitempty"`
	DuplicateEntryIDs   []int64  `json:"duplicate_entry_ids,omitempty"`
	APIError            string   `json:"api_error,omitempty"`
	FixedConfigKeys     int      `json:"fixed_config_keys,omitempty"`
	ClearedSession      bool     `json:"cleared_session,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.SchemaVersion == cqdb.LatestVersion() &&
		len(r.InvalidConfigKeys) == 0 &&
		r.SessionValid && r.APIError == "" &&
		len(r.MalformedTimestamps) == 0 && len(r.DuplicateEntryIDs) == 0
}

// RunDoctor checks stored config, the stored session, and the food-log history the API
// returns. With fix set it removes invalid config rows and forgets a rejected session.
func RunDoctor(ctx context.Context, db *sql.DB, apiURL string, api DoctorAPI, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	version, err := cqdb.SchemaVersion(db)
	if err != nil {
		return report, fmt.Errorf("doctor schema check: %w", err)
	}
	report.SchemaVersion = version

	stored, err := ListConfig(db)
	if err != nil {
		return report, fmt.Errorf("doctor config check: %w", err)
	}
	for _, key := range sortedKeys(stored) {
		if err := ValidateConfig(key, stored[key]); err != nil {
			report.InvalidConfigKeys = append(report.InvalidConfigKeys, key)
		}
	}

	session, err := LoadSession(db, apiURL)
	if err != nil {
		return report, fmt.Errorf("doctor session check: %w", err)
	}
	report.SessionStored = session != nil

	_, userErr := api.CurrentUser(ctx)
	if userErr != nil {
		report.APIError = userErr.Error()
	} else {
		report.SessionValid = true
		entries, err := api.FoodLogHistory(ctx)
		if err != nil {
			report.APIError = err.Error()
		} else {
			report.HistoryEntries = len(entries)
			seen := make(map[int64]bool, len(entries))
			for _, e := range entries {
				if seen[e.ID] {
					report.DuplicateEntryIDs = append(report.DuplicateEntryIDs, e.ID)
				}
				seen[e.ID] = true
				if _, err := foodlog.ParseTimestamp(e.LoggedAt); err != nil {
					report.MalformedTimestamps = append(report.MalformedTimestamps, e.ID)
				}
			}
		}
	}

	if !fix {
		return report, nil
	}
	for _, key := range report.InvalidConfigKeys {
		removed, err := UnsetConfig(db, key)
		if err != nil {
			return report, fmt.Errorf("doctor fix config %q: %w", key, err)
		}
		if removed {
			report.FixedConfigKeys++
		}
	}
	if report.SessionStored && !report.SessionValid && errors.Is(userErr, backend.ErrUnauthenticated) {
		if _, err := ClearSession(db, apiURL); err != nil {
			return report, fmt.Errorf("doctor fix session: %w", err)
		}
		report.ClearedSession = true
	}
	return report, nil
}
