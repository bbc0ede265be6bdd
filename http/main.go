package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-observability/config"
	"github.com/tnqbao/gau-observability/engine"
	"github.com/tnqbao/gau-observability/http/controller"
	routes "github.com/tnqbao/gau-observability/http/route"
	infraPkg "github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	eng, err := engine.InitEngine(cfg, infra, repo)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	ctrl := controller.NewController(cfg, infra, repo, eng)

	router := routes.SetupRouter(ctrl)

	addr := ":" + cfg.EnvConfig.HTTPPort
	log.Printf("HTTP Server started on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
