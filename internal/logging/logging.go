// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// Setup builds a charmbracelet handler behind slog and installs it as the
// default logger.
func Setup(options Options) *slog.Logger {
	logger := New(options)
	slog.SetDefault(logger)
	return logger
}

func New(options Options) *slog.Logger {
	output := options.Output
	if output == nil {
		output = os.Stderr
	}

	formatter := log.TextFormatter
	switch strings.ToLower(strings.TrimSpace(options.Format)) {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	handler := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           ParseLevel(options.Level),
		Prefix:          "ledgerly",
		Formatter:       formatter,
	})
	return slog.New(handler)
}

// ParseLevel maps a level name to a charmbracelet level; unknown names mean info.
func ParseLevel(raw string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}
