package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/modelcat/modelcat/internal/catalog"
	"github.com/modelcat/modelcat/internal/config"
	"github.com/modelcat/modelcat/internal/gateway"
	"github.com/modelcat/modelcat/internal/handlers"
	"github.com/modelcat/modelcat/internal/middleware"
)

func New(cfg *config.Config, logger *zap.Logger, cat *catalog.Catalog) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())

	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.CORS.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.CORS.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/health", handlers.Health)

	settings := cfg.CatalogSettings()
	forwarder := gateway.NewHandler(logger, nil, settings)
	r.HandleFunc("/api/ai/{provider}/*", forwarder.Forward)

	modelsHandler := handlers.NewModelsHandler(logger, cat)
	r.Route("/api/models", func(r chi.Router) {
		r.Get("/", modelsHandler.CurrentModels)
		r.Get("/{provider}", modelsHandler.RefreshModels)
		r.Post("/{provider}/select", modelsHandler.SelectProvider)
	})

	return r
}
