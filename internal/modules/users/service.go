package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/neurotradx/neurotradx/internal/insights"
)

// ErrStrategyUnavailable means the narrative provider could not produce a strategy.
var ErrStrategyUnavailable = errors.New("investment strategy unavailable")

// Store is the persistence needed by Service.
type Store interface {
	Create(u *User) error
	GetByID(id string) (*User, error)
	GetByUsername(username string) (*User, error)
	UpdatePreferences(id string, p Preferences) error
}

// StrategyAdvisor produces a free-text investment strategy.
type StrategyAdvisor interface {
	Strategy(ctx context.Context, p insights.Preferences) insights.Assessment
}

// Service handles registration, login and preference management.
type Service struct {
	store   Store
	advisor StrategyAdvisor
	cost    int
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a new user service. cost is the bcrypt cost; values
// outside bcrypt's range use bcrypt.DefaultCost.
func NewService(store Store, advisor StrategyAdvisor, cost int, log zerolog.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:   store,
		advisor: advisor,
		cost:    cost,
		now:     time.Now,
		log:     log.With().Str("service", "users").Logger(),
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.store.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(u); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", u.ID).Msg("User registered")
	return u, nil
}

// Login returns the user when the password matches. Unknown users and wrong
// passwords both return ErrInvalidCredentials.
func (s *Service) Login(username, password string) (*User, error) {
	u, err := s.store.GetByUsername(strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpdatePreferences replaces the user's stated preferences.
func (s *Service) UpdatePreferences(userID string, p Preferences) error {
	if err := s.store.UpdatePreferences(userID, p); err != nil {
		return err
	}
	s.log.Debug().Str("user_id", userID).Msg("Preferences updated")
	return nil
}

// InvestmentStrategy asks the advisor for a strategy tailored to the user's preferences.
func (s *Service) InvestmentStrategy(ctx context.Context, userID string) (insights.Assessment, error) {
	u, err := s.store.GetByID(userID)
	if err != nil {
		return insights.Assessment{}, err
	}
	if s.advisor == nil {
		return insights.Assessment{Status: insights.StatusDisabled}, ErrStrategyUnavailable
	}

	a := s.advisor.Strategy(ctx, insights.Preferences{
		FinancialGoal:        u.Preferences.FinancialGoal,
		RiskTolerance:        u.Preferences.RiskTolerance,
		InvestmentPreference: u.Preferences.InvestmentPreference,
	})
	if !a.OK() {
		return a, ErrStrategyUnavailable
	}
	return a, nil
}
