package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritaslab/credence/internal/api/handlers"
	mw "github.com/veritaslab/credence/internal/api/middleware"
	"github.com/veritaslab/credence/internal/cache"
	"github.com/veritaslab/credence/internal/config"
	"github.com/veritaslab/credence/internal/domain"
	"github.com/veritaslab/credence/internal/service"
	"github.com/veritaslab/credence/internal/store"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router *chi.Mux
	Decay  *service.DecayService

	reputationCache *cache.ReputationCache
	metrics         *mw.MetricsCollector
	startTime       time.Time
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	sourceStore := store.NewSourceStore(db)
	eventStore := store.NewEventStore(db)
	claimStore := store.NewClaimStore(db)
	refutationStore := store.NewRefutationStore(db)
	entityStore := store.NewEntityStore(db)
	investigationStore := store.NewInvestigationStore(db)

	// Read-through reputation cache in front of the source store
	reputationCache := cache.NewReputationCache(sourceStore, config.ReputationCacheTTL(), logger)

	// Services
	sourceSvc := service.NewSourceService(sourceStore)
	sourceSvc.InitialScore = config.ReputationInitialScore()

	eventSvc := service.NewEventService(eventStore)

	claimSvc := service.NewClaimService(claimStore, sourceStore, eventStore, entityStore, refutationStore, logger)
	claimSvc.InitialScore = config.ReputationInitialScore()

	credibilitySvc := service.NewCredibilityService(eventStore, claimStore, sourceStore, logger)

	reputationSvc := service.NewReputationService(sourceStore, reputationCache, logger)
	reputationSvc.HighThreshold = config.CredibilityHighThreshold()
	reputationSvc.LowThreshold = config.CredibilityLowThreshold()
	reputationSvc.Increment = config.ReputationIncrement()
	reputationSvc.Decrement = config.ReputationDecrement()

	graphSvc := service.NewGraphService(eventStore, claimStore, sourceStore, refutationStore, logger)
	investigationSvc := service.NewInvestigationService(investigationStore)

	decaySvc := service.NewDecayService(sourceStore, reputationCache, logger)
	decaySvc.SetInterval(config.DecayInterval())
	decaySvc.SetInactivityWindow(config.DecayInactivityWindow())
	decaySvc.SetRate(config.DecayRate())

	// Handlers
	sourceHandler := handlers.NewSourceHandler(sourceSvc, reputationSvc)
	eventHandler := handlers.NewEventHandler(eventSvc, credibilitySvc, graphSvc)
	claimHandler := handlers.NewClaimHandler(claimSvc)
	investigationHandler := handlers.NewInvestigationHandler(investigationSvc)

	r := chi.NewRouter()

	app := &App{
		Router:          r,
		Decay:           decaySvc,
		reputationCache: reputationCache,
		metrics:         mw.NewMetricsCollector(),
		startTime:       time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(app.metrics.Middleware)                                       // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		// Sources and their reputation
		r.Route("/sources", func(r chi.Router) {
			r.Post("/", sourceHandler.Create)
			r.Get("/trending", sourceHandler.Trending)
			r.Post("/reputation", sourceHandler.UpdateReputation)
			r.Post("/reputation/batch", sourceHandler.BatchUpdateReputation)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", sourceHandler.GetByName)
				r.Get("/reputation", sourceHandler.GetReputation)
			})
		})

		// Events
		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.Create)
			r.Get("/", eventHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", eventHandler.GetByID)
				r.Put("/status", eventHandler.UpdateStatus)
				r.Get("/credibility", eventHandler.GetCredibility)
				r.Post("/credibility", eventHandler.RecomputeCredibility)
				r.Get("/graph", eventHandler.Graph)
				r.Get("/timeline", eventHandler.Timeline)
			})
		})

		// Claims and refutations
		r.Route("/claims", func(r chi.Router) {
			r.Post("/", claimHandler.Create)
			r.Post("/refutations", claimHandler.Refute)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", claimHandler.GetByID)
				r.Put("/status", claimHandler.UpdateStatus)
				r.Get("/refutations", claimHandler.ListRefutations)
			})
		})

		// Investigation history
		r.Route("/investigations", func(r chi.Router) {
			r.Post("/", investigationHandler.Save)
			r.Get("/", investigationHandler.List)
			r.Get("/{id}", investigationHandler.GetByID)
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":         uptime.Seconds(),
			"uptime_human":           uptime.Round(time.Second).String(),
			"request_count":          app.metrics.Requests(),
			"error_count":            app.metrics.Errors(),
			"reputation_cache_items": app.reputationCache.ItemCount(),
			"goroutines":             runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and the cache satisfy their interfaces at compile time.
var (
	_ domain.SourceStore        = (*store.SourceStore)(nil)
	_ domain.EventStore         = (*store.EventStore)(nil)
	_ domain.ClaimStore         = (*store.ClaimStore)(nil)
	_ domain.RefutationStore    = (*store.RefutationStore)(nil)
	_ domain.EntityStore        = (*store.EntityStore)(nil)
	_ domain.InvestigationStore = (*store.InvestigationStore)(nil)
	_ domain.ReputationCache    = (*cache.ReputationCache)(nil)
)
