package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().
		Timestamp().
		Str("scope", "hydrakv_bench").
		Logger()

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error().Err(fmt.Errorf("executing command: %w", err)).Send()
		os.Exit(1)
	}
}
