package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"gocmr/adapters/postgres"
	"gocmr/adapters/rng"
	"gocmr/app"
	"gocmr/internal"
	"gocmr/internal/api"
	"gocmr/internal/config"
	"gocmr/internal/testkit"
	"gocmr/ports"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewDefaultLogger()

	var runs ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			return err
		}
		runs = postgres.NewRunRepository(db)
		logger.Info("using postgres run repository")
	} else {
		runs = testkit.NewInMemoryRunRepository()
		logger.Warn("DATABASE_URL not set, runs are kept in memory only")
	}

	prep := app.NewPrepService(rng.New(), logger)
	server := api.NewServer(prep, runs, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	return http.ListenAndServe(addr, server.Routes())
}
