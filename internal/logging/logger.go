package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/snapback/internal/config"
)

// NewLogger creates the service-wide structured logger.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "snapback").
		Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
