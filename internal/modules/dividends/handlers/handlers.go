// Package handlers provides HTTP handlers for dividend history and income
// projection operations.
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
	"github.com/aristath/folio/internal/modules/dividends"
	"github.com/aristath/folio/internal/services"
)

const projectionCacheTTL = 30 * time.Minute

// Handler handles dividend HTTP requests.
type Handler struct {
	projector      *dividends.Projector
	repo           *dividends.Repository
	analytics      *services.AnalyticsService
	cache          *calculations.Cache
	trailingWindow int
	log            zerolog.Logger
}

// NewHandler creates a new dividends handler.
func NewHandler(
	projector *dividends.Projector,
	repo *dividends.Repository,
	analytics *services.AnalyticsService,
	cache *calculations.Cache,
	trailingWindowMonths int,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		projector:      projector,
		repo:           repo,
		analytics:      analytics,
		cache:          cache,
		trailingWindow: trailingWindowMonths,
		log:            log.With().Str("handler", "dividends").Logger(),
	}
}

// HandleGetProjection handles GET /api/dividends/projection
func (h *Handler) HandleGetProjection(w http.ResponseWriter, r *http.Request) {
	window := h.trailingWindow
	if v := r.URL.Query().Get("window_months"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			window = parsed
		}
	}
	cacheKey := fmt.Sprintf("projection:%dm", window)

	var projection dividends.Projection
	hit, err := h.cache.Get(calculations.CategoryDividends, cacheKey, &projection)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read cached dividend projection")
	}
	if hit {
		api.WriteJSON(h.log, w, http.StatusOK, projection)
		return
	}

	p, history, err := h.loadInputs()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	prices, err := h.analytics.LatestPrices(p)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	projection, err = h.projector.Project(history, p, prices, time.Now().UTC(), window)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	if err := h.cache.Set(calculations.CategoryDividends, cacheKey, projection, projectionCacheTTL); err != nil {
		h.log.Warn().Err(err).Msg("Failed to cache dividend projection")
	}

	api.WriteJSON(h.log, w, http.StatusOK, projection)
}

// HandleGetUpcoming handles GET /api/dividends/upcoming
func (h *Handler) HandleGetUpcoming(w http.ResponseWriter, r *http.Request) {
	p, history, err := h.loadInputs()
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	upcoming := h.projector.Upcoming(history, p, time.Now().UTC())
	if upcoming == nil {
		upcoming = []domain.DividendEvent{}
	}

	api.WriteJSON(h.log, w, http.StatusOK, upcoming)
}

// eventInput is the wire form of a dividend event; dates are YYYY-MM-DD.
type eventInput struct {
	Ticker         string  `json:"ticker"`
	Date           string  `json:"date"`
	AmountPerShare float64 `json:"amount_per_share"`
}

// HandleSaveEvents handles POST /api/dividends/events
func (h *Handler) HandleSaveEvents(w http.ResponseWriter, r *http.Request) {
	var inputs []eventInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		api.WriteError(h.log, w, &domain.InvalidScenarioError{Field: "body", Reason: "malformed JSON"})
		return
	}

	events := make([]domain.DividendEvent, 0, len(inputs))
	for _, in := range inputs {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			api.WriteError(h.log, w, &domain.InvalidScenarioError{
				Field:  "date",
				Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", in.Date),
			})
			return
		}
		events = append(events, domain.DividendEvent{
			Ticker:         in.Ticker,
			Date:           date,
			AmountPerShare: in.AmountPerShare,
		})
	}

	if err := h.repo.Save(events); err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	if err := h.cache.InvalidateCategory(calculations.CategoryDividends); err != nil {
		h.log.Warn().Err(err).Msg("Failed to invalidate dividend cache")
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]int{"saved": len(events)})
}

// HandleGetEvents handles GET /api/dividends/events/{ticker}
func (h *Handler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.GetByTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}
	if events == nil {
		events = []domain.DividendEvent{}
	}

	api.WriteJSON(h.log, w, http.StatusOK, events)
}

func (h *Handler) loadInputs() (domain.Portfolio, []domain.DividendEvent, error) {
	p, err := h.analytics.LoadPortfolio()
	if err != nil {
		return domain.Portfolio{}, nil, err
	}

	history, err := h.repo.GetAll()
	if err != nil {
		return domain.Portfolio{}, nil, err
	}

	return p, history, nil
}
