// Package handlers provides HTTP handlers for holdings and valuation
// operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/api"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/calculations"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/services"
)

// Handler handles portfolio HTTP requests.
type Handler struct {
	repo      *portfolio.Repository
	service   *portfolio.Service
	analytics *services.AnalyticsService
	cache     *calculations.Cache
	log       zerolog.Logger
}

// NewHandler creates a new portfolio handler.
func NewHandler(
	repo *portfolio.Repository,
	service *portfolio.Service,
	analytics *services.AnalyticsService,
	cache *calculations.Cache,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		repo:      repo,
		service:   service,
		analytics: analytics,
		cache:     cache,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetValuation handles GET /api/portfolio
func (h *Handler) HandleGetValuation(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.valuate()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}
	api.WriteJSON(h.log, w, http.StatusOK, valuation)
}

// HandleGetAllocation handles GET /api/portfolio/allocation
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.valuate()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	allocation, err := h.service.Allocate(valuation)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}
	api.WriteJSON(h.log, w, http.StatusOK, allocation)
}

// HandleListHoldings handles GET /api/portfolio/holdings
func (h *Handler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	assets, err := h.repo.GetAll()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	api.WriteJSON(h.log, w, http.StatusOK, assets)
}

// HandleUpsertHolding handles POST /api/portfolio/holdings
func (h *Handler) HandleUpsertHolding(w http.ResponseWriter, r *http.Request) {
	var asset domain.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if asset.AssetClass == "" {
		asset.AssetClass = domain.AssetClassUnknown
	}

	if err := h.repo.Upsert(asset); err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	h.invalidateReports()

	stored, err := h.repo.Get(asset.Ticker)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}
	api.WriteJSON(h.log, w, http.StatusOK, stored)
}

// HandleDeleteHolding handles DELETE /api/portfolio/holdings/{ticker}
func (h *Handler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	if err := h.repo.Delete(ticker); err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	h.invalidateReports()

	remaining, err := h.repo.Count()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"ticker":    ticker,
		"status":    "deleted",
		"remaining": remaining,
	})
}

func (h *Handler) valuate() (portfolio.Valuation, error) {
	p, err := h.repo.Load()
	if err != nil {
		return portfolio.Valuation{}, err
	}

	prices, err := h.analytics.LatestPrices(p)
	if err != nil {
		return portfolio.Valuation{}, err
	}

	return h.service.Valuate(p, prices, time.Now().UTC())
}

// invalidateReports drops every cached report derived from holdings. Called
// after each mutation so stale analytics never outlive the data they were
// computed from.
func (h *Handler) invalidateReports() {
	for _, category := range []string{
		calculations.CategoryRisk,
		calculations.CategoryDividends,
		calculations.CategoryMonteCarlo,
	} {
		if err := h.cache.InvalidateCategory(category); err != nil {
			h.log.Warn().Err(err).Str("category", category).Msg("Failed to invalidate cache")
		}
	}
}
