package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/api/handlers"
	mw "github.com/Harshitk-cp/fitcheck/internal/api/middleware"
	"github.com/Harshitk-cp/fitcheck/internal/buildconfig"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Pipeline  handlers.Verifier
	Retriever domain.Retriever
	// Stats may be nil when no backend can report corpus statistics.
	Stats  handlers.StatsSource
	Checks map[string]handlers.Pinger

	APIKeys        []string
	RateLimitRPS   float64
	RateLimitBurst int
	// RequestTimeout bounds handler execution. Zero leaves it to the pipeline.
	RequestTimeout time.Duration
}

// App holds the router and the state behind /metrics.
type App struct {
	Router      *chi.Mux
	RateLimiter *mw.RateLimiter
	metrics     *mw.Metrics
	startTime   time.Time
}

func NewApp(deps Deps, logger *zap.Logger) *App {
	verifyHandler := handlers.NewVerifyHandler(deps.Pipeline)
	searchHandler := handlers.NewSearchHandler(deps.Retriever, deps.Stats)
	healthHandler := handlers.NewHealthHandler(deps.Checks)

	r := chi.NewRouter()
	app := &App{
		Router:      r,
		RateLimiter: mw.NewRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst),
		metrics:     &mw.Metrics{},
		startTime:   time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)

	// Health and metrics (no auth, no rate limit)
	r.Get("/health", healthHandler.Health)
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(app.RateLimiter.Middleware)
		r.Use(mw.APIKeyAuth(deps.APIKeys))
		if deps.RequestTimeout > 0 {
			r.Use(middleware.Timeout(deps.RequestTimeout))
		}

		r.Post("/verify", verifyHandler.Verify)
		r.Post("/claims/extract", verifyHandler.ExtractClaims)
		r.Post("/search", searchHandler.Search)
		r.Get("/stats", searchHandler.Stats)
	})

	return app
}

// StartBackground runs periodic maintenance until ctx is done.
func (app *App) StartBackground(ctx context.Context) {
	go app.RateLimiter.RunCleanup(ctx, 10*time.Minute, 30*time.Minute)
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"requests":       app.metrics.Snapshot(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
				"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
				"num_gc":   memStats.NumGC,
			},
			"version":    buildconfig.VersionInfo(),
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
