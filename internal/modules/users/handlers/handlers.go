// Package handlers provides HTTP handlers for user accounts.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/modules/users"
)

// Handler provides HTTP handlers for user endpoints
type Handler struct {
	service *users.Service
	log     zerolog.Logger
}

// NewHandler creates a new users handler
func NewHandler(service *users.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "users").Logger(),
	}
}

// RegisterRoutes registers user routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/update_preferences", h.HandleUpdatePreferences)
	r.Post("/investment_strategy", h.HandleInvestmentStrategy)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type preferencesRequest struct {
	UserID string `json:"user_id"`
	users.Preferences
}

// HandleRegister handles POST /register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.service.Register(req.Username, req.Password)
	switch {
	case errors.Is(err, users.ErrUsernameTaken), errors.Is(err, users.ErrMissingFields):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to register user")
		h.writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"user_id": u.ID,
	})
}

// HandleLogin handles POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.service.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to log in")
		h.writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"user_id": u.ID,
	})
}

// HandleUpdatePreferences handles POST /update_preferences
func (h *Handler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.service.UpdatePreferences(req.UserID, req.Preferences)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to update preferences")
		h.writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Preferences updated successfully"})
}

// HandleInvestmentStrategy handles POST /investment_strategy
func (h *Handler) HandleInvestmentStrategy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	strategy, err := h.service.InvestmentStrategy(r.Context(), req.UserID)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, users.ErrStrategyUnavailable):
		h.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":               "failed to fetch investment strategy",
			"investment_strategy": strategy,
		})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to build investment strategy")
		h.writeError(w, http.StatusInternalServerError, "failed to build investment strategy")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"investment_strategy": strategy})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
