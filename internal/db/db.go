package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// Open opens the local SQLite database. One connection is kept so the session and config
// writes of concurrent commands queue on the busy timeout instead of failing.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?" + url.Values{"_pragma": []string{"busy_timeout(5000)", "journal_mode(WAL)"}}.Encode()
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping sqlite database %s: %w", path, err)
	}
	return sqldb, nil
}
