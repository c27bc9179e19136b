// Package users manages accounts and their stated investment preferences.
package users

import (
	"errors"
	"time"
)

// Errors returned by Service; handlers map them to HTTP statuses.
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingFields      = errors.New("username and password are required")
)

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Preferences are free-text answers collected from the user.
type Preferences struct {
	FinancialGoal        string `json:"financial_goal"`
	RiskTolerance        string `json:"risk_tolerance"`
	InvestmentPreference string `json:"investment_preference"`
}
