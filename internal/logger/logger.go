package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zerolog.Logger
}

func New(debug bool, w io.Writer) *Logger {
	level := zerolog.InfoLevel

	if debug {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(w).Level(level).With().Timestamp().Logger()

	return &Logger{l}
}

// NewConsole returns a human-readable logger writing to stdout.
func NewConsole(debug bool) *Logger {
	return New(debug, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// NewErrorConsole is used before configuration has been decoded.
func NewErrorConsole(debug bool) *Logger {
	return New(debug, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
