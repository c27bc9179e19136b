// Package handlers provides HTTP handlers for market insights.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/modules/market"
	"github.com/neurotradx/neurotradx/internal/utils"
)

// maxSymbols bounds a single request.
const maxSymbols = 25

// Handler serves market insight endpoints
type Handler struct {
	service *market.Service
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(service *market.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// RegisterRoutes registers market routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/market/insights", h.HandleInsights)
}

type insightsRequest struct {
	Symbols  json.RawMessage `json:"symbols"`
	Days     int             `json:"days"`
	Exchange string          `json:"exchange"`
}

// HandleInsights handles POST /api/market/insights
func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbols := decodeSymbols(req.Symbols)
	if len(symbols) == 0 {
		h.writeError(w, http.StatusBadRequest, "Please enter at least one stock symbol.")
		return
	}
	if len(symbols) > maxSymbols {
		h.writeError(w, http.StatusBadRequest, "too many symbols")
		return
	}

	snapshots := h.service.Snapshots(r.Context(), symbols, req.Days, req.Exchange)
	response := map[string]interface{}{"stocks": snapshots}
	if summary, ok := market.Actionable(snapshots); ok {
		response["insights"] = summary
	} else {
		response["insights"] = "No data to generate insights."
	}

	h.writeJSON(w, http.StatusOK, response)
}

func decodeSymbols(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return utils.ParseSymbols(strings.Join(list, ","))
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return utils.ParseSymbols(joined)
	}
	return nil
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
