// Package logging configures process-wide structured logging with zerolog.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls log output for a process.
type Config struct {
	Level   string `json:"level"`
	Debug   bool   `json:"debug"`
	Console bool   `json:"console"`
}

// Init configures the global logger. Call once at process start.
func Init(cfg Config) error {
	var output io.Writer = os.Stderr
	if cfg.Console {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	level := zerolog.InfoLevel

	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
	}

	log.Logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return nil
}

// Component returns a logger scoped to the named component.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
