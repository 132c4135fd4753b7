// =============================================================================
// Auction JSON to DAT Converter - Logging
// =============================================================================
//
// This module builds the logrus logger shared by the commands and the
// conversion pipeline. Components take a logrus.FieldLogger and attach their
// context with WithFields (file, run_id, table, rows).
//
// FORMATS:
//   - "text": human readable, one line per entry (default)
//   - "json": one JSON object per entry, for log shippers
//
// Both formats use ISO 8601 timestamps.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// TimestampFormat is the ISO 8601 layout used in every log entry.
const TimestampFormat = "2006-01-02T15:04:05Z07:00"

// New creates a logger writing to out at the given level and format.
//
// PARAMETERS:
//   - level: "debug", "info", "warn" or "error" (any logrus level name).
//   - format: "text" or "json". Empty means "text".
//   - out: Where entries are written.
//
// RETURNS:
//   - The configured logger.
//   - An error if the level or format is unknown.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(lvl)

	formatter, err := Formatter(format)
	if err != nil {
		return nil, err
	}
	logger.SetFormatter(formatter)

	return logger, nil
}

// Formatter returns the logrus formatter for a format name.
func Formatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: TimestampFormat,
		}, nil
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
		}, nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
