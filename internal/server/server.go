package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/modelcat/modelcat/internal/catalog"
	"github.com/modelcat/modelcat/internal/config"
	"github.com/modelcat/modelcat/internal/router"
)

// Build wires the catalog and returns the main API and metrics servers,
// in that order.
func Build(cfg *config.Config, log *zap.Logger) []*http.Server {
	settings := cfg.CatalogSettings()
	resolver := catalog.NewResolver(settings, nil, log)
	cat := catalog.New(resolver)

	mainRouter := router.New(cfg, log, cat)
	metricsRouter := router.NewMetricsRouter(log)

	return []*http.Server{
		{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      mainRouter,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		{
			Addr:         fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			Handler:      metricsRouter,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Run starts the servers and blocks until SIGINT/SIGTERM, then shuts
// them down within the configured grace period.
func Run(cfg *config.Config, log *zap.Logger) error {
	servers := Build(cfg, log)

	for i, srv := range servers {
		go func(s *http.Server, idx int) {
			serverType := "Main API"
			if idx == 1 {
				serverType = "Metrics"
			}

			log.Info(fmt.Sprintf("%s server starting", serverType),
				zap.String("address", s.Addr))

			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal(fmt.Sprintf("%s server failed to start", serverType),
					zap.Error(err))
			}
		}(srv, i)
	}

	log.Info("modelcat started",
		zap.Int("api_port", cfg.Server.Port),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.String("mode", cfg.Catalog.Mode))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
		}
	}

	log.Info("Servers shutdown complete")
	return nil
}
