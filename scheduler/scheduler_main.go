package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-observability/config"
	"github.com/tnqbao/gau-observability/engine"
	infraPkg "github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

func main() {
	err := godotenv.Load("../staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := engine.InitEngine(cfg, infra, repo)
	if err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to initialize engine: %v", err)
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	eng.Start(ctx)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down scheduler...")
	eng.Stop()
	cancel()

	infra.Close(ctx)

	infra.Logger.InfoWithContextf(ctx, "Scheduler exited properly")
}
