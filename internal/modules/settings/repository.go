// Package settings stores runtime-tunable configuration in config.db.
// Values stored here take precedence over environment variables.
package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles settings database operations.
// Values are stored as strings and converted on read.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new settings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get returns the value for key, or nil when it is not set.
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// Set upserts a setting. A nil description keeps the existing one.
func (r *Repository) Set(key string, value string, description *string) error {
	now := time.Now().Unix()

	var err error
	if description != nil {
		_, err = r.db.Exec(`
			INSERT INTO settings (key, value, description, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				description = excluded.description,
				updated_at = excluded.updated_at
		`, key, value, *description, now)
	} else {
		_, err = r.db.Exec(`
			INSERT INTO settings (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`, key, value, now)
	}
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	r.log.Debug().Str("key", key).Msg("Setting updated")
	return nil
}

// GetAll returns every stored setting.
func (r *Repository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan setting row")
			continue
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return result, nil
}

// GetFloat returns the setting as float64. Unparseable values fall back to defaultValue.
func (r *Repository) GetFloat(key string, defaultValue float64) (float64, error) {
	value, err := r.Get(key)
	if err != nil || value == nil {
		return defaultValue, err
	}

	f, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Str("value", *value).Msg("Failed to parse float setting")
		return defaultValue, nil
	}
	return f, nil
}

// GetInt returns the setting as int. "12.0" style values are accepted.
func (r *Repository) GetInt(key string, defaultValue int) (int, error) {
	f, err := r.GetFloat(key, float64(defaultValue))
	if err != nil {
		return defaultValue, err
	}
	return int(f), nil
}

// Delete removes a setting. Deleting a missing key is not an error.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
