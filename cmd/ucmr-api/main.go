package main

import (
	"fmt"
	"log"

	"ucmr-pipeline/internal/api"
	"ucmr-pipeline/internal/api/handler"
	"ucmr-pipeline/internal/config"
	"ucmr-pipeline/internal/store"
	"ucmr-pipeline/pkg/utils"
)

// @title UCMR Pipeline API
// @version 1.0
// @description Job API for processing UCMR4 water-quality monitoring data
// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := store.InitDB(cfg.DBPath); err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	om := utils.NewOutputManager(cfg.OutputDir)
	if err := om.EnsureBaseDir(); err != nil {
		log.Fatal(err)
	}
	handler.Init(om, cfg.JobTimeout, cfg.PostgresURL)

	r := api.NewRouter()
	r.Start(fmt.Sprintf(":%d", cfg.Port))
}
