// Package handlers provides HTTP handlers for deterministic wealth
// projection operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/api"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/projection"
	"github.com/aristath/folio/internal/services"
)

// Handler handles projection HTTP requests.
type Handler struct {
	projector *projection.Projector
	analytics *services.AnalyticsService
	log       zerolog.Logger
}

// NewHandler creates a new projection handler.
func NewHandler(projector *projection.Projector, analytics *services.AnalyticsService, log zerolog.Logger) *Handler {
	return &Handler{
		projector: projector,
		analytics: analytics,
		log:       log.With().Str("handler", "projection").Logger(),
	}
}

// simulateRequest is the wire form of a projection request. InitialValue nil
// means "start from the current portfolio market value".
type simulateRequest struct {
	InitialValue         *float64 `json:"initial_value"`
	HorizonMonths        int      `json:"horizon_months"`
	MonthlyContribution  float64  `json:"monthly_contribution"`
	ExpectedAnnualReturn float64  `json:"expected_annual_return"`
	ReinvestDividends    bool     `json:"reinvest_dividends"`
	MonthlyDividendYield float64  `json:"monthly_dividend_yield"`
}

// HandleSimulate handles POST /api/projection/deterministic
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	initialValue, err := h.resolveInitialValue(req.InitialValue)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	scenario := projection.Scenario{
		HorizonMonths:        req.HorizonMonths,
		MonthlyContribution:  req.MonthlyContribution,
		ExpectedAnnualReturn: req.ExpectedAnnualReturn,
		ReinvestDividends:    req.ReinvestDividends,
	}

	path, err := h.projector.Simulate(initialValue, scenario, req.MonthlyDividendYield)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"initial_value": initialValue,
		"scenario":      scenario,
		"path":          path,
		"final_value":   path[len(path)-1].Value,
	})
}

func (h *Handler) resolveInitialValue(requested *float64) (float64, error) {
	if requested != nil {
		if *requested < 0 {
			return 0, &domain.InvalidScenarioError{Field: "initial_value", Reason: "must be >= 0"}
		}
		return *requested, nil
	}

	state, err := h.analytics.PortfolioReturns(services.WindowStart(time.Now().UTC(), 1))
	if err != nil {
		return 0, err
	}
	return state.TotalValue, nil
}
