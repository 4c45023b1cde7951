package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // "console" or "json"
	TimeFormat string
	Output     io.Writer
}

// Setup configures the global zerolog logger used across the service and
// returns it. Console output is the default since the dashboard server is
// usually run interactively; JSON is available for deployments behind a
// log collector.
func Setup(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	var out io.Writer = cfg.Output
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	logger := zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
	return logger
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
