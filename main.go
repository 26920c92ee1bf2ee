package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oakmart/storefront/internal/cmd"
)

func main() {
	// a .env file is a local development convenience; absence is fine
	_ = godotenv.Load()

	configureLogging()

	cmd.Execute()
}

func configureLogging() {
	// Set global level to the minimum so individual loggers control their
	// own levels.
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	// default level is Warn: command output belongs to the commands, not
	// the log
	log.Logger = log.Level(zerolog.WarnLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}
