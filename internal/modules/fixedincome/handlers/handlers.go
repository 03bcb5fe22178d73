// Package handlers provides HTTP handlers for fixed income accrual
// operations.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/api"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/fixedincome"
	"github.com/aristath/folio/internal/modules/marketdata"
)

// Handler handles fixed income HTTP requests.
type Handler struct {
	calc    *fixedincome.Calculator
	history *marketdata.HistoryRepository
	log     zerolog.Logger
}

// NewHandler creates a new fixed income handler.
func NewHandler(calc *fixedincome.Calculator, history *marketdata.HistoryRepository, log zerolog.Logger) *Handler {
	return &Handler{
		calc:    calc,
		history: history,
		log:     log.With().Str("handler", "fixedincome").Logger(),
	}
}

// flatRequest is the wire form of a flat-rate projection. Dates are
// YYYY-MM-DD.
type flatRequest struct {
	Principal      float64 `json:"principal"`
	AnnualRate     float64 `json:"annual_rate"`
	IndexedRatePct float64 `json:"indexed_rate_pct"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
}

// HandleProjectFlat handles POST /api/fixedincome/flat
func (h *Handler) HandleProjectFlat(w http.ResponseWriter, r *http.Request) {
	var req flatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	accrued, err := h.calc.ProjectFlat(req.Principal, req.AnnualRate, req.IndexedRatePct, start, end)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"principal":        req.Principal,
		"accrued_value":    accrued,
		"interest":         accrued - req.Principal,
		"annual_rate":      req.AnnualRate,
		"indexed_rate_pct": req.IndexedRatePct,
		"business_days":    fixedincome.BusinessDaysBetween(start, end),
	})
}

// curveRequest is the wire form of a curve-based projection. The rate comes
// from the stored benchmark curve, so only the instrument is supplied.
type curveRequest struct {
	Principal      float64 `json:"principal"`
	IndexedRatePct float64 `json:"indexed_rate_pct"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
}

// HandleProjectCurve handles POST /api/fixedincome/curve
func (h *Handler) HandleProjectCurve(w http.ResponseWriter, r *http.Request) {
	var req curveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	curve, err := h.history.GetRateCurve()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	accrued, err := h.calc.ProjectCurve(req.Principal, curve, req.IndexedRatePct, start, end)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"principal":        req.Principal,
		"accrued_value":    accrued,
		"interest":         accrued - req.Principal,
		"indexed_rate_pct": req.IndexedRatePct,
		"curve_points":     len(curve.Points),
	})
}

// scheduleRequest is the wire form of a monthly schedule request.
type scheduleRequest struct {
	Principal      float64 `json:"principal"`
	AnnualRate     float64 `json:"annual_rate"`
	IndexedRatePct float64 `json:"indexed_rate_pct"`
	Months         int     `json:"months"`
}

// HandleSchedule handles POST /api/fixedincome/schedule
func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	schedule, err := h.calc.MonthlySchedule(req.Principal, req.AnnualRate, req.IndexedRatePct, req.Months)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	final := schedule[len(schedule)-1].Value
	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"schedule":       schedule,
		"final_value":    final,
		"total_interest": final - req.Principal,
	})
}

func parseDates(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, &domain.InvalidScenarioError{
			Field:  "start_date",
			Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", startStr),
		}
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, &domain.InvalidScenarioError{
			Field:  "end_date",
			Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", endStr),
		}
	}
	return start, end, nil
}
