package main

import (
	"lodge/config"
	"lodge/di"
	"lodge/helper"
	"lodge/infras/database"
	"lodge/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()

	// sqlite databases are local to the process, so their schema is always brought up to date.
	if cfg.DB.Postgres.AutoMigrate || http.DB.Driver == database.DriverSQLite {
		if err := helper.Up(cfg, http.DB); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	http.Serve()
}
