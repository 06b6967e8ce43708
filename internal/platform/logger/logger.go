// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options selects the handler and minimum level.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New creates a structured logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	ho := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "json":
		h = slog.NewJSONHandler(w, ho)
	case "text":
		h = slog.NewTextHandler(w, ho)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", opts.Format)
	}
	return slog.New(h), nil
}

// ParseLevel converts a level name into a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}
