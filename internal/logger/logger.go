package logger

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Level  string
	Format string
}

// PrepareLogger configures the global logrus logger.
func PrepareLogger(config Config) error {
	level, err := log.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return fmt.Errorf("incorrect log level %q: %w", config.Level, err)
	}

	switch strings.ToLower(config.Format) {
	case "", FormatText:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}

	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	return nil
}
