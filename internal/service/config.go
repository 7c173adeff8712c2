package service

import (
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/foodlog"
)

const (
	ConfigAPIURL         = "api_url"
	ConfigDailyGoal      = "daily_goal"
	ConfigTimezone       = "timezone"
	ConfigCookieName     = "cookie_name"
	ConfigRequestTimeout = "request_timeout"
)

// configEnv maps each recognized key to the environment variable that overrides it.
var configEnv = map[string]string{
	ConfigAPIURL:         "CQ_API_URL",
	ConfigDailyGoal:      "CQ_DAILY_GOAL",
	ConfigTimezone:       "CQ_TIMEZONE",
	ConfigCookieName:     "CQ_COOKIE_NAME",
	ConfigRequestTimeout: "CQ_REQUEST_TIMEOUT",
}

// Settings is the resolved configuration for one command run.
type Settings struct {
	APIURL         string
	DailyGoal      float64
	Timezone       *time.Location
	CookieName     string
	RequestTimeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		APIURL:     backend.DefaultBaseURL,
		DailyGoal:  foodlog.DefaultGoal,
		Timezone:   time.Local,
		CookieName: backend.DefaultCookieName,
	}
}

func (s Settings) FoodLogConfig() foodlog.Config {
	return foodlog.Config{Goal: s.DailyGoal, Location: s.Timezone}
}

func ConfigKeys() []string {
	keys := make([]string, 0, len(configEnv))
	for k := range configEnv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func EnvVarFor(key string) string {
	return configEnv[normalizeKey(key)]
}

// ValidateConfig checks that value is acceptable for key.
func ValidateConfig(key, value string) error {
	var s Settings
	return applySetting(&s, normalizeKey(key), strings.TrimSpace(value))
}

func SetConfig(db *sql.DB, key, value string) error {
	key = normalizeKey(key)
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	if err := ValidateConfig(key, value); err != nil {
		return err
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func UnsetConfig(db *sql.DB, key string) (bool, error) {
	key = normalizeKey(key)
	if key == "" {
		return false, fmt.Errorf("config key is required")
	}
	res, err := db.Exec(`DELETE FROM app_config WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("unset config %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read rows affected for config %q: %w", key, err)
	}
	return affected > 0, nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = normalizeKey(key)
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// ResolveSettings layers flag overrides over environment variables over stored config
// over defaults. lookupEnv is usually os.LookupEnv.
func ResolveSettings(db *sql.DB, overrides map[string]string, lookupEnv func(string) (string, bool)) (Settings, error) {
	settings := DefaultSettings()
	stored, err := ListConfig(db)
	if err != nil {
		return Settings{}, err
	}
	for _, key := range ConfigKeys() {
		value, source, ok := pickSetting(key, overrides, lookupEnv, stored)
		if !ok {
			continue
		}
		if err := applySetting(&settings, key, value); err != nil {
			return Settings{}, fmt.Errorf("%s (from %s): %w", key, source, err)
		}
	}
	return settings, nil
}

func pickSetting(key string, overrides map[string]string, lookupEnv func(string) (string, bool), stored map[string]string) (string, string, bool) {
	if v, ok := overrides[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), "flag", true
	}
	if lookupEnv != nil {
		if v, ok := lookupEnv(configEnv[key]); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), configEnv[key], true
		}
	}
	if v, ok := stored[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), "config", true
	}
	return "", "", false
}

func applySetting(s *Settings, key, value string) error {
	switch key {
	case ConfigAPIURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api url must be an absolute http(s) URL, got %q", value)
		}
		s.APIURL = strings.TrimRight(value, "/")
	case ConfigDailyGoal:
		goal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid daily goal %q", value)
		}
		if err := validateNonNegativeFloat("daily goal", goal); err != nil {
			return err
		}
		s.DailyGoal = goal
	case ConfigTimezone:
		loc, err := time.LoadLocation(value)
		if err != nil {
			return fmt.Errorf("unknown timezone %q", value)
		}
		s.Timezone = loc
	case ConfigCookieName:
		if strings.ContainsAny(value, " ;=") || value == "" {
			return fmt.Errorf("invalid cookie name %q", value)
		}
		s.CookieName = value
	case ConfigRequestTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid request timeout %q (expected a duration like 15s)", value)
		}
		if d < 0 {
			return fmt.Errorf("request timeout must be >= 0")
		}
		s.RequestTimeout = d
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return nil
}
