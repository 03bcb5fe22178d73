// Package handlers provides HTTP handlers for risk report operations.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/api"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/calculations"
	"github.com/aristath/folio/internal/modules/returns"
	"github.com/aristath/folio/internal/modules/risk"
	"github.com/aristath/folio/internal/services"
)

const reportCacheTTL = 15 * time.Minute

// Config carries the analytics defaults the handlers fall back to when a
// request does not override them.
type Config struct {
	RiskFreeRate    float64
	PeriodsPerYear  int
	BenchmarkTicker string
	WindowMonths    int
}

// Handler handles risk report HTTP requests.
type Handler struct {
	engine    *risk.Engine
	analytics *services.AnalyticsService
	builder   *returns.Builder
	cache     *calculations.Cache
	cfg       Config
	log       zerolog.Logger
}

// NewHandler creates a new risk handler.
func NewHandler(
	engine *risk.Engine,
	analytics *services.AnalyticsService,
	builder *returns.Builder,
	cache *calculations.Cache,
	cfg Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		engine:    engine,
		analytics: analytics,
		builder:   builder,
		cache:     cache,
		cfg:       cfg,
		log:       log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetReport handles GET /api/risk/report
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	benchmark, months := h.requestWindow(r)
	cacheKey := fmt.Sprintf("%s:%dm", benchmark, months)

	var report risk.Report
	hit, err := h.cache.Get(calculations.CategoryRisk, cacheKey, &report)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read cached risk report")
	}
	if hit {
		api.WriteJSON(h.log, w, http.StatusOK, report)
		return
	}

	report, err = h.computeReport(benchmark, months)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	if err := h.cache.Set(calculations.CategoryRisk, cacheKey, report, reportCacheTTL); err != nil {
		h.log.Warn().Err(err).Msg("Failed to cache risk report")
	}

	api.WriteJSON(h.log, w, http.StatusOK, report)
}

// HandleGetPerformance handles GET /api/risk/performance
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	benchmark, months := h.requestWindow(r)

	portfolioReturns, benchmarkReturns, err := h.alignedReturns(benchmark, months)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	performance, err := h.engine.CumulativePerformance(portfolioReturns, benchmarkReturns)
	if err != nil {
		api.WriteError(h.log, w, err)
		return
	}

	api.WriteJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"benchmark": benchmark,
		"months":    months,
		"series":    performance,
	})
}

func (h *Handler) computeReport(benchmark string, months int) (risk.Report, error) {
	since := services.WindowStart(time.Now().UTC(), months)

	state, err := h.analytics.PortfolioReturns(since)
	if err != nil {
		return risk.Report{}, err
	}

	benchmarkReturns, err := h.analytics.BenchmarkReturns(benchmark, since)
	if err != nil {
		return risk.Report{}, err
	}

	portfolioAligned, benchmarkAligned, err := h.builder.Align(state.Returns, benchmarkReturns)
	if err != nil {
		return risk.Report{}, err
	}

	return h.engine.Compute(risk.Input{
		PortfolioReturns: portfolioAligned,
		BenchmarkReturns: benchmarkAligned,
		RiskFreeRate:     h.cfg.RiskFreeRate,
		TotalValue:       state.TotalValue,
		TotalCost:        state.TotalCost,
		PeriodsPerYear:   h.cfg.PeriodsPerYear,
	})
}

func (h *Handler) alignedReturns(benchmark string, months int) (domain.ReturnSeries, domain.ReturnSeries, error) {
	since := services.WindowStart(time.Now().UTC(), months)

	state, err := h.analytics.PortfolioReturns(since)
	if err != nil {
		return domain.ReturnSeries{}, domain.ReturnSeries{}, err
	}

	benchmarkReturns, err := h.analytics.BenchmarkReturns(benchmark, since)
	if err != nil {
		return domain.ReturnSeries{}, domain.ReturnSeries{}, err
	}

	return h.builder.Align(state.Returns, benchmarkReturns)
}

func (h *Handler) requestWindow(r *http.Request) (benchmark string, months int) {
	benchmark = r.URL.Query().Get("benchmark")
	if benchmark == "" {
		benchmark = h.cfg.BenchmarkTicker
	}

	months = h.cfg.WindowMonths
	if v := r.URL.Query().Get("months"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			months = parsed
		}
	}
	return benchmark, months
}
