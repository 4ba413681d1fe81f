package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ErrInvalidLevel and ErrInvalidFormat are returned by the parsers below.
var (
	ErrInvalidLevel  = errors.New("logger: invalid level")
	ErrInvalidFormat = errors.New("logger: invalid format")
)

// Options controls the local log handler.
// Output defaults to os.Stderr so that command output on stdout stays clean.
// A nil Level means info; pass a *slog.LevelVar to change it at runtime.
type Options struct {
	Output io.Writer
	Level  slog.Leveler
	Format string
}

// ParseLevel converts debug, info, warn or error (any case) to a slog.Level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Join(ErrInvalidLevel, fmt.Errorf("unknown level %q", s))
	}
}

// ParseFormat validates a format name. An empty string means JSON.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatText:
		return f, nil
	default:
		return "", errors.Join(ErrInvalidFormat, fmt.Errorf("unknown format %q", s))
	}
}

// NewHandler builds the local handler described by opts.
func NewHandler(opts Options) slog.Handler {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == FormatText {
		return slog.NewTextHandler(out, ho)
	}
	return slog.NewJSONHandler(out, ho)
}

// New creates a logger with optional context extractors.
func New(opts Options, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(NewHandler(opts), extractors...))
}
