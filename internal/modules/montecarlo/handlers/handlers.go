// Package handlers provides HTTP handlers for Monte Carlo simulation
// operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/api"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/montecarlo"
	"github.com/aristath/folio/internal/services"
)

// Handler handles Monte Carlo HTTP requests.
type Handler struct {
	simulator *montecarlo.Simulator
	analytics *services.AnalyticsService
	log       zerolog.Logger
}

// NewHandler creates a new Monte Carlo handler.
func NewHandler(simulator *montecarlo.Simulator, analytics *services.AnalyticsService, log zerolog.Logger) *Handler {
	return &Handler{
		simulator: simulator,
		analytics: analytics,
		log:       log.With().Str("handler", "montecarlo").Logger(),
	}
}

// simulateRequest is the wire form of a simulation request. HistoryMonths
// bounds the return history the distribution parameters are estimated from;
// zero means the full stored history. InitialValue nil starts from the
// current portfolio market value.
type simulateRequest struct {
	InitialValue         *float64 `json:"initial_value"`
	HistoryMonths        int      `json:"history_months"`
	HorizonMonths        int      `json:"horizon_months"`
	NumPaths             int      `json:"num_paths"`
	MonthlyContribution  float64  `json:"monthly_contribution"`
	MonthlyDividendYield float64  `json:"monthly_dividend_yield"`
	ReinvestDividends    bool     `json:"reinvest_dividends"`
	Seed                 *uint64  `json:"seed"`
}

// HandleSimulate handles POST /api/montecarlo/simulate
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	since := services.WindowStart(time.Now().UTC(), req.HistoryMonths)
	state, err := h.analytics.PortfolioReturns(since)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	initialValue := state.TotalValue
	if req.InitialValue != nil {
		if *req.InitialValue < 0 {
			api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "initial_value", Reason: "must be >= 0"})
			return
		}
		initialValue = *req.InitialValue
	}

	cfg := montecarlo.Config{
		HorizonMonths:        req.HorizonMonths,
		NumPaths:             req.NumPaths,
		MonthlyContribution:  req.MonthlyContribution,
		MonthlyDividendYield: req.MonthlyDividendYield,
		ReinvestDividends:    req.ReinvestDividends,
		Seed:                 req.Seed,
	}

	runID := uuid.NewString()
	started := time.Now()

	result, err := h.simulator.Simulate(state.Returns, initialValue, cfg)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	h.log.Info().
		Str("run_id", runID).
		Int("paths", result.NumPaths).
		Dur("duration_ms", time.Since(started)).
		Msg("Simulation completed")

	api.WriteJSONRun(h.log, w, http.StatusOK, result, runID)
}
