package main

import (
	"context"
	"fmt"

	"github.com/hoshinolab/fortune-gate/internal/adapter"
	"github.com/hoshinolab/fortune-gate/internal/config"
	httphandler "github.com/hoshinolab/fortune-gate/internal/handler/http"
	"github.com/hoshinolab/fortune-gate/internal/limiter"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/server"
	"github.com/hoshinolab/fortune-gate/internal/service"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("fortune-gate")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log.GetChildLogger())
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err = migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	storages := store.NewStorages(db, log.GetChildLogger())
	adapters := adapter.NewAdapters(cfg.Gateways, log.GetChildLogger())
	services := service.NewServices(*storages, adapters, cfg, log.GetChildLogger())
	lim := limiter.New(cfg.Redis, log.GetChildLogger())

	handler := httphandler.NewHandler(services, lim, db, cfg, log.GetChildLogger())

	srv, err := server.NewServer(handler, cfg.Server, log.GetChildLogger())
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
