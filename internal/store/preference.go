package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

const prefDarkMode = "dark_mode"

// PreferenceStore keeps small per-user key/value preferences.
type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the value userID stored under key and whether it was present.
func (s *PreferenceStore) Get(ctx context.Context, userID int64, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE user_id = ? AND key = ?`, userID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, true, nil
}

func (s *PreferenceStore) GetAll(ctx context.Context, userID int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM preferences WHERE user_id = ? ORDER BY key`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get all preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

func (s *PreferenceStore) Set(ctx context.Context, userID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userID, key, value, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

func (s *PreferenceStore) Clear(ctx context.Context, userID int64, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE user_id = ? AND key = ?`, userID, key)
	if err != nil {
		return fmt.Errorf("clear preference %q: %w", key, err)
	}
	return nil
}

// DarkMode reports whether userID turned dark mode on. It defaults to off.
func (s *PreferenceStore) DarkMode(ctx context.Context, userID int64) (bool, error) {
	v, ok, err := s.Get(ctx, userID, prefDarkMode)
	if err != nil || !ok {
		return false, err
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", prefDarkMode, err)
	}
	return on, nil
}

func (s *PreferenceStore) SetDarkMode(ctx context.Context, userID int64, on bool) error {
	return s.Set(ctx, userID, prefDarkMode, strconv.FormatBool(on))
}
