package main

import (
	"lodge/config"
	"lodge/helper"
	"lodge/infras/database"
	"lodge/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down) is required")
	}

	cfg := config.Get()

	var run func(*config.Config, *database.Connection) error

	switch os.Args[1] {
	case helper.ActionUp:
		run = helper.Up
	case helper.ActionDown:
		run = helper.Down
	case helper.ActionDrop:
		run = helper.Drop
	case helper.ActionStepUp:
		run = helper.StepUp
	default:
		log.Fatal().Str("direction", os.Args[1]).Msg("Invalid direction. Use 'up', 'down', 'drop' or 'step-up'")
	}

	conn := database.New(cfg)
	defer conn.Close()

	if err := run(cfg, conn); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
