// Package handlers provides HTTP handlers for market data ingestion and
// retrieval.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/api"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/calculations"
	"github.com/aristath/folio/internal/modules/marketdata"
	"github.com/aristath/folio/internal/services"
)

// Handler handles market data HTTP requests.
type Handler struct {
	history *marketdata.HistoryRepository
	cache   *calculations.Cache
	log     zerolog.Logger
}

// NewHandler creates a new market data handler.
func NewHandler(history *marketdata.HistoryRepository, cache *calculations.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		history: history,
		cache:   cache,
		log:     log.With().Str("handler", "marketdata").Logger(),
	}
}

// pricePointInput is the wire form of one daily close; dates are YYYY-MM-DD.
type pricePointInput struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// HandleSavePrices handles PUT /api/marketdata/prices/{ticker}
func (h *Handler) HandleSavePrices(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	var inputs []pricePointInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	points := make([]domain.PricePoint, 0, len(inputs))
	for _, in := range inputs {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			api.WriteError(h.log, w, &domain.InvalidScenarioError{
				Field:  "date",
				Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", in.Date),
			})
			return
		}
		points = append(points, domain.PricePoint{Date: date, Close: in.Close})
	}

	if err := h.history.SavePrices(ticker, points); err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	// New prices invalidate every price-derived report, including dividend
	// projections whose yields are computed against the latest closes.
	for _, category := range []string{
		calculations.CategoryRisk,
		calculations.CategoryMonteCarlo,
		calculations.CategoryDividends,
	} {
		if err := h.cache.InvalidateCategory(category); err != nil {
			h.log.Warn().Err(err).Str("category", category).Msg("Failed to invalidate cache")
		}
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]int{"saved": len(points)})
}

// HandleGetPrices handles GET /api/marketdata/prices/{ticker}
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			months = parsed
		}
	}

	series, err := h.history.GetPriceSeries(ticker, services.WindowStart(time.Now().UTC(), months))
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"ticker": series.Ticker,
		"points": series.Points,
	})
}

// HandleGetCurve handles GET /api/marketdata/curve
func (h *Handler) HandleGetCurve(w http.ResponseWriter, r *http.Request) {
	curve, err := h.history.GetRateCurve()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{"points": curve.Points})
}

// HandleSaveCurve handles PUT /api/marketdata/curve
func (h *Handler) HandleSaveCurve(w http.ResponseWriter, r *http.Request) {
	var points []domain.RatePoint
	if err := json.NewDecoder(r.Body).Decode(&points); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	curve, err := domain.NewRateCurve(points)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	if err := h.history.SaveRateCurve(curve); err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]int{"points": len(curve.Points)})
}
