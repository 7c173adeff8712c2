package cq

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/stealthomikey/caloriequest/internal/app"
	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/db"
	"github.com/stealthomikey/caloriequest/internal/foodlog"
	"github.com/stealthomikey/caloriequest/internal/provider/openfoodfacts"
	"github.com/stealthomikey/caloriequest/internal/service"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

func withSettings(run func(*sql.DB, service.Settings) error) error {
	return withDB(func(sqldb *sql.DB) error {
		settings, err := service.ResolveSettings(sqldb, flagOverrides(), os.LookupEnv)
		if err != nil {
			return err
		}
		return run(sqldb, settings)
	})
}

// withBackend resolves settings and builds an API client carrying the stored session.
func withBackend(run func(*sql.DB, service.Settings, *backend.Client) error) error {
	return withSettings(func(sqldb *sql.DB, settings service.Settings) error {
		client, err := newBackendClient(sqldb, settings)
		if err != nil {
			return err
		}
		return run(sqldb, settings, client)
	})
}

func flagOverrides() map[string]string {
	return map[string]string{
		service.ConfigAPIURL:     apiURLFlag,
		service.ConfigDailyGoal:  goalFlag,
		service.ConfigTimezone:   timezoneFlag,
		service.ConfigCookieName: cookieNameFlag,
	}
}

func newHTTPClient(settings service.Settings) *http.Client {
	return &http.Client{Timeout: settings.RequestTimeout}
}

func newBackendClient(sqldb *sql.DB, settings service.Settings) (*backend.Client, error) {
	client := &backend.Client{
		BaseURL:    settings.APIURL,
		HTTPClient: newHTTPClient(settings),
		CookieName: settings.CookieName,
	}
	session, err := service.LoadSession(sqldb, settings.APIURL)
	if err != nil {
		return nil, err
	}
	if session != nil {
		client.Session = session.Value
		if session.CookieName != "" && cookieNameFlag == "" {
			client.CookieName = session.CookieName
		}
	}
	return client, nil
}

func newOpenFoodFactsClient(settings service.Settings) *openfoodfacts.Client {
	c := &openfoodfacts.Client{}
	if settings.RequestTimeout > 0 {
		c.HTTPClient = newHTTPClient(settings)
	}
	return c
}

func newStore(client *backend.Client) *foodlog.Store {
	return foodlog.NewStore(client, slog.Default().With("component", "foodlog"))
}

// explain adds a next step to errors the user can act on.
func explain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, backend.ErrUnauthenticated) {
		return fmt.Errorf("%w: run `cq login` first", err)
	}
	return err
}

func loadEnvFiles() error {
	for _, path := range app.EnvFiles() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}
