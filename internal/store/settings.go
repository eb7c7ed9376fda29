package store

import (
	"database/sql"
	"fmt"
)

// Well-known settings keys.
const (
	SettingHomeTimezone   = "timezone"
	SettingBackupEnabled  = "backup_enabled"
	SettingBackupInterval = "backup_interval_hours"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value for a key, or the empty string if unset.
func (s *SettingsStore) Get(homeID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE home_id = ? AND key = ?`,
		homeID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

func (s *SettingsStore) Set(homeID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (home_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(home_id, key)
		 DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		homeID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// All returns every setting for a home as a key/value map.
func (s *SettingsStore) All(homeID int64) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings WHERE home_id = ?`, homeID)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Delete(homeID int64, key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE home_id = ? AND key = ?`, homeID, key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}
