package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/modelcat/modelcat/internal/config"
	"github.com/modelcat/modelcat/internal/logger"
	"github.com/modelcat/modelcat/internal/server"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.Initialize(cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := server.Run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}
