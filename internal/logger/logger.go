package logger

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Level  string
	Format string
}

// PrepareLogger applies level and format to the standard logrus logger.
func PrepareLogger(config Config) error {
	level, err := log.ParseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("incorrect log level %q: %w", config.Level, err)
	}

	switch strings.ToLower(config.Format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("incorrect log format %q", config.Format)
	}
	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	return nil
}
