// Package handlers provides the HTTP handler for tax estimation.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/modules/tax"
)

// Handler serves tax summaries
type Handler struct {
	now func() time.Time
	log zerolog.Logger
}

// NewHandler creates a new tax handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		now: time.Now,
		log: log.With().Str("handler", "tax").Logger(),
	}
}

// RegisterRoutes registers tax routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/submit_portfolio", h.HandleSubmitPortfolio)
}

// HandleSubmitPortfolio handles POST /api/submit_portfolio
func (h *Handler) HandleSubmitPortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Portfolio []tax.Asset `json:"portfolio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Portfolio) == 0 {
		h.writeError(w, http.StatusBadRequest, "No portfolio data provided.")
		return
	}

	summary := tax.Calculate(req.Portfolio, h.now())
	h.log.Debug().
		Int("counted", summary.Counted).
		Int("skipped", summary.Skipped).
		Str("total_tax", summary.TotalTax.String()).
		Msg("Tax summary computed")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"tax_summary": summary})
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
