package users

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles user database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new user repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "users").Logger(),
	}
}

const userColumns = `id, username, password_hash,
	COALESCE(financial_goal, ''), COALESCE(risk_tolerance, ''), COALESCE(investment_preference, ''),
	created_at, updated_at`

// Create inserts a new user. A duplicate username returns ErrUsernameTaken.
func (r *Repository) Create(u *User) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, username, password_hash, financial_goal, risk_tolerance,
			investment_preference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.PasswordHash,
		u.Preferences.FinancialGoal, u.Preferences.RiskTolerance, u.Preferences.InvestmentPreference,
		u.CreatedAt.Unix(), u.UpdatedAt.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user %s: %w", u.Username, err)
	}

	r.log.Debug().Str("user_id", u.ID).Msg("User created")
	return nil
}

// GetByID returns the user or ErrUserNotFound.
func (r *Repository) GetByID(id string) (*User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetByUsername returns the user or ErrUserNotFound.
func (r *Repository) GetByUsername(username string) (*User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// UpdatePreferences overwrites all three preference fields.
func (r *Repository) UpdatePreferences(id string, p Preferences) error {
	result, err := r.db.Exec(`
		UPDATE users
		SET financial_goal = ?, risk_tolerance = ?, investment_preference = ?, updated_at = ?
		WHERE id = ?
	`, p.FinancialGoal, p.RiskTolerance, p.InvestmentPreference, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update preferences for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the number of registered users.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u                    User
		createdAt, updatedAt int64
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash,
		&u.Preferences.FinancialGoal, &u.Preferences.RiskTolerance, &u.Preferences.InvestmentPreference,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &u, nil
}
