// Package server provides the HTTP server and routing for Folio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/modules/calculations"
	"github.com/aristath/folio/internal/modules/dividends"
	dividendhandlers "github.com/aristath/folio/internal/modules/dividends/handlers"
	"github.com/aristath/folio/internal/modules/fixedincome"
	fixedincomehandlers "github.com/aristath/folio/internal/modules/fixedincome/handlers"
	"github.com/aristath/folio/internal/modules/marketdata"
	marketdatahandlers "github.com/aristath/folio/internal/modules/marketdata/handlers"
	"github.com/aristath/folio/internal/modules/montecarlo"
	montecarlohandlers "github.com/aristath/folio/internal/modules/montecarlo/handlers"
	"github.com/aristath/folio/internal/modules/portfolio"
	portfoliohandlers "github.com/aristath/folio/internal/modules/portfolio/handlers"
	"github.com/aristath/folio/internal/modules/projection"
	projectionhandlers "github.com/aristath/folio/internal/modules/projection/handlers"
	"github.com/aristath/folio/internal/modules/returns"
	"github.com/aristath/folio/internal/modules/risk"
	riskhandlers "github.com/aristath/folio/internal/modules/risk/handlers"
	"github.com/aristath/folio/internal/services"
)

// Config holds server configuration.
type Config struct {
	Log         zerolog.Logger
	Config      *config.Config
	PortfolioDB *database.DB
	HistoryDB   *database.DB
	CacheDB     *database.DB
	ReportCache *calculations.Cache
}

// Server is the HTTP server. It owns the router and wires every module's
// handlers to the shared repositories and engines.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	portfolioDB    *database.DB
	historyDB      *database.DB
	cacheDB        *database.DB
	reportCache    *calculations.Cache
	systemHandlers *SystemHandlers
	startedAt      time.Time
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		cfg:         cfg.Config,
		portfolioDB: cfg.PortfolioDB,
		historyDB:   cfg.HistoryDB,
		cacheDB:     cfg.CacheDB,
		reportCache: cfg.ReportCache,
		startedAt:   time.Now(),
	}

	s.systemHandlers = NewSystemHandlers(
		cfg.Log,
		s.startedAt,
		cfg.PortfolioDB,
		cfg.HistoryDB,
		cfg.CacheDB,
	)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes wires repositories, engines and handlers, and mounts every
// module under /api.
func (s *Server) setupRoutes() {
	log := s.log

	// Repositories
	holdingsRepo := portfolio.NewRepository(s.portfolioDB.Conn(), log)
	historyRepo := marketdata.NewHistoryRepository(s.historyDB.Conn(), log)
	dividendRepo := dividends.NewRepository(s.historyDB.Conn(), log)

	// The cache is shared with the maintenance scheduler owned by main.
	reportCache := s.reportCache
	if reportCache == nil {
		reportCache = calculations.NewCache(s.cacheDB.Conn(), log)
	}

	// Engines
	returnsBuilder := returns.NewBuilder(log)
	riskEngine := risk.NewEngine(log)
	dividendProjector := dividends.NewProjector(log)
	wealthProjector := projection.NewProjector(log)
	simulator := montecarlo.NewSimulator(log)
	fixedIncomeCalc := fixedincome.NewCalculator(s.cfg.BusinessDaysPerYear, log)

	// Shared assembler
	analytics := services.NewAnalyticsService(holdingsRepo, historyRepo, returnsBuilder, log)

	portfolioService := portfolio.NewService(log)

	portfolioHandlers := portfoliohandlers.NewHandler(holdingsRepo, portfolioService, analytics, reportCache, log)
	riskHandlers := riskhandlers.NewHandler(riskEngine, analytics, returnsBuilder, reportCache, riskhandlers.Config{
		RiskFreeRate:    s.cfg.RiskFreeRate,
		PeriodsPerYear:  s.cfg.PeriodsPerYear,
		BenchmarkTicker: s.cfg.BenchmarkTicker,
		WindowMonths:    s.cfg.TrailingWindowMonths,
	}, log)
	dividendHandlers := dividendhandlers.NewHandler(
		dividendProjector, dividendRepo, analytics, reportCache, s.cfg.TrailingWindowMonths, log)
	projectionHandlers := projectionhandlers.NewHandler(wealthProjector, analytics, log)
	montecarloHandlers := montecarlohandlers.NewHandler(simulator, analytics, log)
	fixedincomeHandlers := fixedincomehandlers.NewHandler(fixedIncomeCalc, historyRepo, log)
	marketdataHandlers := marketdatahandlers.NewHandler(historyRepo, reportCache, log)

	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		portfolioHandlers.RegisterRoutes(r)
		riskHandlers.RegisterRoutes(r)
		dividendHandlers.RegisterRoutes(r)
		projectionHandlers.RegisterRoutes(r)
		montecarloHandlers.RegisterRoutes(r)
		fixedincomeHandlers.RegisterRoutes(r)
		marketdataHandlers.RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		})
	})
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
