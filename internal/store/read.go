package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

func (s *Store) GetSessionKey(user string) (string, error) {
	row := s.db.QueryRow("SELECT session_key FROM User WHERE name = ? AND session_key <> ''", user)
	var key string
	err := row.Scan(&key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting session key: %w", err)
	}
	return key, nil
}

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last updated: %w", err)
	}
	return t.Time, nil
}

func (s *Store) GetLatestListen(user string) (time.Time, error) {
	query := "SELECT date FROM Listen WHERE user = ? ORDER BY CAST(date AS INTEGER) desc LIMIT 1"
	row := s.db.QueryRow(query, user)
	var dateStr string
	err := row.Scan(&dateStr)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("scanning latest listen: %w", err)
	}

	return parseDate(dateStr)
}

func parseDate(dateStr string) (time.Time, error) {
	// Older imports stored RFC 3339 strings instead of Unix seconds.
	dateInt, err := strconv.ParseInt(dateStr, 10, 64)
	if err == nil {
		return time.Unix(dateInt, 0).UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, dateStr)
	if err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("parsing date %q: %w", dateStr, err)
}

// GetFirstListen returns the earliest listen of user, or the zero time.
// Listens stored with text dates are skipped.
func (s *Store) GetFirstListen(user string) (time.Time, error) {
	query := `
	SELECT date FROM Listen
	WHERE user = ? AND date NOT GLOB '*[^0-9]*' AND CAST(date AS INTEGER) > 0
	ORDER BY CAST(date AS INTEGER) ASC LIMIT 1`
	var dateStr string
	err := s.db.QueryRow(query, user).Scan(&dateStr)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("scanning first listen: %w", err)
	}
	return parseDate(dateStr)
}
