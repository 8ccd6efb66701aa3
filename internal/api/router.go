package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fartlog/fartlog-be/internal/api/handlers"
	"github.com/fartlog/fartlog-be/internal/auth"
	"github.com/fartlog/fartlog-be/internal/services"
)

// Deps bundles everything the router needs.
type Deps struct {
	Tokens         *auth.Manager
	UserService    services.UserServiceProvider
	TypeService    services.FartTypeServiceProvider
	RecordService  services.RecordServiceProvider
	Analytics      services.AnalyticsServiceProvider
	ExportService  services.ExportServiceProvider
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	authHandler := handlers.NewAuthHandler(deps.UserService, deps.Tokens)
	typeHandler := handlers.NewFartTypeHandler(deps.TypeService)
	recordHandler := handlers.NewRecordHandler(deps.RecordService)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.Analytics)
	exportHandler := handlers.NewExportHandler(deps.ExportService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(deps.Tokens.Middleware())

			r.Get("/auth/me", authHandler.Me)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", recordHandler.List)
				r.Post("/", recordHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", recordHandler.Get)
					r.Put("/", recordHandler.Update)
					r.Delete("/", recordHandler.Delete)
				})
			})

			r.Route("/fart-types", func(r chi.Router) {
				r.Get("/", typeHandler.List)
				r.Post("/", typeHandler.Create)
			})

			r.Get("/export/csv", exportHandler.CSV)
			r.Get("/export/excel", exportHandler.Excel)

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/daily-count", analyticsHandler.DailyCount)
				r.Get("/weekly-count", analyticsHandler.WeeklyCount)
				r.Get("/type-distribution", analyticsHandler.TypeDistribution)
				r.Get("/smell-distribution", analyticsHandler.SmellDistribution)
				r.Get("/duration-distribution", analyticsHandler.DurationDistribution)
				r.Get("/hourly-heatmap", analyticsHandler.HourlyHeatmap)
				r.Get("/cross-analysis", analyticsHandler.CrossAnalysis)
			})
		})
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
