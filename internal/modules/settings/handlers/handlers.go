// Package handlers provides HTTP handlers for settings management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/neurotradx/neurotradx/internal/modules/settings"
	"github.com/rs/zerolog"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service *settings.Service
	log     zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// RegisterRoutes registers settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Put("/{key}", h.HandleUpdate)
	})
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get settings")
		h.writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"settings": all})
}

// HandleUpdate handles PUT /api/settings/{key}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var update settings.SettingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Set(key, update.Value); err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("Rejected setting update")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "key": key})
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
