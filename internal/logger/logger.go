package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// Setup sets the global log level. Unknown levels fall back to info.
func Setup(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "warn", "warning":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	case "quiet", "off":
		log = log.Level(zerolog.Disabled)
	default:
		log = log.Level(zerolog.InfoLevel)
	}
}

func Debugf(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

func Infof(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

func Fatalf(format string, args ...any) {
	log.Fatal().Msgf(format, args...)
}
