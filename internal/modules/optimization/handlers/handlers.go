// Package handlers provides HTTP handlers for portfolio analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/modules/optimization"
	"github.com/neurotradx/neurotradx/internal/utils"
)

// Handler provides HTTP handlers for optimization endpoints
type Handler struct {
	service *optimization.Service
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(service *optimization.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "optimization").Logger(),
	}
}

// RegisterRoutes registers the analysis routes. Both paths are served by the
// same handler.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.HandleAnalyze)
	r.Post("/api/portfolio/analyze", h.HandleAnalyze)
}

type analyzeRequest struct {
	Tickers               tickerList `json:"tickers"`
	StartDate             string     `json:"start_date"`
	EndDate               string     `json:"end_date"`
	RiskFreeRate          *float64   `json:"risk_free_rate,omitempty"`
	TradingPeriodsPerYear *int       `json:"trading_periods_per_year,omitempty"`
	Seed                  *uint64    `json:"seed,omitempty"`
	Samples               int        `json:"samples,omitempty"`
}

// tickerList accepts either a JSON array or a comma-separated string.
type tickerList []string

func (t *tickerList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tickers must be a list or a comma-separated string")
	}
	*t = utils.ParseCSV(joined)
	return nil
}

// HandleAnalyze handles POST /analyze and POST /api/portfolio/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := h.decode(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := optimization.AnalyzeRequest{
		Tickers:               body.Tickers,
		RiskFreeRate:          body.RiskFreeRate,
		TradingPeriodsPerYear: body.TradingPeriodsPerYear,
		Seed:                  body.Seed,
		Samples:               body.Samples,
	}
	if req.StartDate, err = parseDate("start_date", body.StartDate); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EndDate, err = parseDate("end_date", body.EndDate); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Portfolio analysis failed")
		} else {
			h.log.Warn().Err(err).Msg("Portfolio analysis rejected")
		}
		h.writeError(w, status, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) decode(r *http.Request) (analyzeRequest, error) {
	var body analyzeRequest

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return body, fmt.Errorf("invalid form body")
		}
		body.Tickers = utils.ParseCSV(r.FormValue("tickers"))
		body.StartDate = r.FormValue("start_date")
		body.EndDate = r.FormValue("end_date")
		if v := r.FormValue("risk_free_rate"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return body, fmt.Errorf("invalid risk_free_rate")
			}
			body.RiskFreeRate = &f
		}
		if v := r.FormValue("trading_periods_per_year"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return body, fmt.Errorf("invalid trading_periods_per_year")
			}
			body.TradingPeriodsPerYear = &n
		}
		if v := r.FormValue("seed"); v != "" {
			seed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return body, fmt.Errorf("invalid seed")
			}
			body.Seed = &seed
		}
		if v := r.FormValue("samples"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return body, fmt.Errorf("invalid samples")
			}
			body.Samples = n
		}
		return body, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, fmt.Errorf("invalid request body: %v", err)
	}
	return body, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, optimization.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, optimization.ErrLoaderFailed):
		return http.StatusBadGateway
	case errors.Is(err, optimization.ErrInsufficientData):
		return http.StatusBadRequest
	case errors.Is(err, optimization.ErrDegenerateVolatility), errors.Is(err, optimization.ErrNonFiniteResult):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
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
