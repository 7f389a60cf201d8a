// Package logger builds the structured loggers used across the application.
package logger

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// New returns a logger at the given level ("debug", "info", "warn", "error").
// Console output is colourised key=value text; otherwise one JSON object per line.
func New(level string, console bool) *log.Logger {
	return NewWithWriter(level, console, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(level string, console bool, w io.Writer) *log.Logger {
	l := &log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05.000",
	}
	if console {
		l.Writer = &log.ConsoleWriter{Writer: w, ColorOutput: false, QuoteString: true, EndWithMessage: true}
	} else {
		l.Writer = &log.IOWriter{Writer: w}
	}
	return l
}

// Discard returns a logger that drops every entry.
func Discard() *log.Logger {
	return &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}
