package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/stealthomikey/caloriequest/internal/model"
)

// Session is the backend session cookie captured after the browser login flow.
type Session struct {
	APIURL     string
	CookieName string
	Value      string
	User       *model.User
	SavedAt    time.Time
}

func SaveSession(db *sql.DB, s Session) error {
	s.APIURL = normalizeAPIURL(s.APIURL)
	s.Value = strings.TrimSpace(s.Value)
	if s.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	if s.Value == "" {
		return fmt.Errorf("session value is required")
	}
	if strings.TrimSpace(s.CookieName) == "" {
		return fmt.Errorf("cookie name is required")
	}
	var (
		userID           sql.NullInt64
		userName, userEm string
	)
	if s.User != nil {
		userID = sql.NullInt64{Int64: s.User.ID, Valid: true}
		userName = s.User.Name
		userEm = s.User.Email
	}
	_, err := db.Exec(`
INSERT INTO sessions(api_url, cookie_name, cookie_value, user_id, user_name, user_email, saved_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(api_url) DO UPDATE SET
  cookie_name=excluded.cookie_name,
  cookie_value=excluded.cookie_value,
  user_id=excluded.user_id,
  user_name=excluded.user_name,
  user_email=excluded.user_email,
  saved_at=excluded.saved_at
`, s.APIURL, s.CookieName, s.Value, userID, userName, userEm, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns nil when no session is stored for apiURL.
func LoadSession(db *sql.DB, apiURL string) (*Session, error) {
	apiURL = normalizeAPIURL(apiURL)
	var (
		s        Session
		userID   sql.NullInt64
		name     string
		email    string
		savedRaw string
	)
	err := db.QueryRow(`
SELECT api_url, cookie_name, cookie_value, user_id, user_name, user_email, saved_at
FROM sessions
WHERE api_url = ?
`, apiURL).Scan(&s.APIURL, &s.CookieName, &s.Value, &userID, &name, &email, &savedRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session for %s: %w", apiURL, err)
	}
	if userID.Valid {
		s.User = &model.User{ID: userID.Int64, Name: name, Email: email}
	}
	s.SavedAt, _ = time.Parse(time.RFC3339, savedRaw)
	return &s, nil
}

func ClearSession(db *sql.DB, apiURL string) (bool, error) {
	res, err := db.Exec(`DELETE FROM sessions WHERE api_url = ?`, normalizeAPIURL(apiURL))
	if err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read rows affected for session: %w", err)
	}
	return affected > 0, nil
}
